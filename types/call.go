package types

// CallMeta identifies one invocation for logging and metrics.
// Empty fields are omitted from log context.
type CallMeta struct {
	// Key is the correlation key generated for the call.
	Key string
	// Language is the language identifier as given by the caller.
	Language string
	// File is the target path as given by the caller.
	File string
}
