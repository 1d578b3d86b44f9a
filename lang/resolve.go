package lang

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver validates target files and builds launch commands.
// The zero value resolves with the default interpreters.
type Resolver struct {
	// Interpreters overrides the interpreter binary per language
	// (e.g. Python: "python3"). Ignored for directly executed targets.
	Interpreters map[Language]string
}

// Resolve resolves with the default Resolver.
func Resolve(language, file string) ([]string, error) {
	var r Resolver
	return r.Resolve(language, file)
}

// Resolve validates file for language and returns the argument vector.
//
// Checks run in a fixed order and stop at the first failure:
// extension, existence, regular file, permissions. The extension check runs
// before the existence check so a mistyped extension is reported as such
// even when the file is missing.
func (r *Resolver) Resolve(language, file string) ([]string, error) {
	l, known := ParseLanguage(language)
	ext := strings.ToLower(filepath.Ext(file))

	if known && !l.Accepts(ext) {
		return nil, &Error{
			Kind: ErrorInvalidExtension,
			Msg: fmt.Sprintf("invalid file %q for language %q: expected e.g. %q",
				file, language, l.example()),
		}
	}

	info, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Kind: ErrorNotFound, Msg: fmt.Sprintf("file not found: %s", file)}
		}
		return nil, &Error{Kind: ErrorStat, Msg: fmt.Sprintf("cannot stat %s", file), Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &Error{Kind: ErrorNotAFile, Msg: fmt.Sprintf("path is not a file: %s", file)}
	}

	if !known {
		return nil, &Error{Kind: ErrorUnsupported, Msg: fmt.Sprintf("unsupported language: %s", language)}
	}

	if l.Compiled() {
		if !isExecutable(info) {
			return nil, &Error{Kind: ErrorNotExecutable, Msg: fmt.Sprintf("file is not executable: %s", file)}
		}
		file = explicitPath(file)
	} else if err := checkReadable(file); err != nil {
		return nil, &Error{Kind: ErrorNotReadable, Msg: fmt.Sprintf("file is not readable: %s", file), Err: err}
	}

	argv := l.launcher(ext)
	if len(argv) > 0 {
		if bin, ok := r.Interpreters[l]; ok && bin != "" {
			argv[0] = bin
		}
	}
	return append(argv, file), nil
}

// explicitPath prefixes a relative path so the launcher treats it as a path
// rather than a command looked up in PATH.
func explicitPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	for _, prefix := range []string{"./", ".\\", "../", "..\\"} {
		if strings.HasPrefix(file, prefix) {
			return file
		}
	}
	return "./" + file
}
