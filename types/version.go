package types

// Version is the canonical project version.
// The caller CLI, the responder and the wire protocol share this version.
const Version = "0.1.0"

// ProtocolVersion is the version of the newline-delimited JSON envelope
// protocol. It moves in lockstep with Version.
const ProtocolVersion = Version
