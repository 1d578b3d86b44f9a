// Package lang resolves a language identifier and a target file into the
// argument vector used to launch the callee process.
//
// Supported languages form a closed enumeration. Each carries its aliases,
// its accepted file extensions and its launcher template as data.
package lang

import (
	"slices"
	"strings"
)

// Language is a supported callee language or runtime.
type Language int

// Supported languages.
const (
	Python Language = iota + 1
	JavaScript
	Ruby
	C
	CPP
	CSharp
	Exe
	Java
	Rust
	Go
)

// descriptor is the data carried by each Language.
type descriptor struct {
	name    string
	aliases []string
	// extensions are lowercase and include the dot. An empty entry accepts
	// any extension, including none.
	extensions []string
	// compiled targets are executed directly and must carry an executable bit.
	compiled bool
	// launch is the argv prefix placed before the file.
	launch []string
	// launchByExt overrides launch for specific extensions.
	launchByExt map[string][]string
}

var descriptors = map[Language]descriptor{
	Python: {
		name:       "PYTHON",
		aliases:    []string{"PY"},
		extensions: []string{".py"},
		launch:     []string{"python"},
	},
	JavaScript: {
		name:       "JAVASCRIPT",
		aliases:    []string{"JS", "NODE", "NODEJS"},
		extensions: []string{".js"},
		launch:     []string{"node"},
	},
	Ruby: {
		name:       "RUBY",
		aliases:    []string{"RB"},
		extensions: []string{".rb"},
		launch:     []string{"ruby"},
	},
	C: {
		name:       "C",
		extensions: []string{".c", ".out", ".exe", ""},
		compiled:   true,
	},
	CPP: {
		name:       "CPP",
		aliases:    []string{"C++", "CPLUSPLUS"},
		extensions: []string{".cpp", ".cc", ".cxx", ".out", ".exe", ""},
		compiled:   true,
	},
	CSharp: {
		name:        "CSHARP",
		aliases:     []string{"CS", "C#"},
		extensions:  []string{".exe", ".dll", ""},
		compiled:    true,
		launchByExt: map[string][]string{".dll": {"dotnet"}},
	},
	Exe: {
		name:       "EXE",
		extensions: []string{".cpp", ".cc", ".cxx", ".out", ".exe", ""},
		compiled:   true,
	},
	Java: {
		name:       "JAVA",
		aliases:    []string{"JAR"},
		extensions: []string{".jar"},
		launch:     []string{"java", "-jar"},
	},
	Rust: {
		name:       "RUST",
		aliases:    []string{"RS"},
		extensions: []string{".rs", ".exe", ".out", ""},
		compiled:   true,
	},
	Go: {
		name:        "GO",
		aliases:     []string{"GOLANG"},
		extensions:  []string{".go", ".exe", ".out", ""},
		compiled:    true,
		launchByExt: map[string][]string{".go": {"go", "run"}},
	},
}

// byName indexes every canonical name and alias.
var byName = func() map[string]Language {
	m := make(map[string]Language)
	for l, d := range descriptors {
		m[d.name] = l
		for _, a := range d.aliases {
			m[a] = l
		}
	}
	return m
}()

// ParseLanguage normalizes an identifier (case-insensitive, aliases allowed).
// The boolean is false for unknown identifiers.
func ParseLanguage(s string) (Language, bool) {
	l, ok := byName[strings.ToUpper(strings.TrimSpace(s))]
	return l, ok
}

// Languages returns every supported language in declaration order.
func Languages() []Language {
	out := make([]Language, 0, len(descriptors))
	for l := Python; l <= Go; l++ {
		out = append(out, l)
	}
	return out
}

// String returns the canonical upper-case name.
func (l Language) String() string {
	if d, ok := descriptors[l]; ok {
		return d.name
	}
	return "UNKNOWN"
}

// Aliases returns the alternative identifiers accepted for l.
func (l Language) Aliases() []string {
	return slices.Clone(descriptors[l].aliases)
}

// Extensions returns the accepted extensions; "" means any extension.
func (l Language) Extensions() []string {
	return slices.Clone(descriptors[l].extensions)
}

// Compiled reports whether l targets are executed directly.
func (l Language) Compiled() bool {
	return descriptors[l].compiled
}

// Accepts reports whether a lowercase extension (with dot) is valid for l.
func (l Language) Accepts(ext string) bool {
	for _, e := range descriptors[l].extensions {
		if e == "" || e == ext {
			return true
		}
	}
	return false
}

// example returns one accepted file name, used in error messages.
func (l Language) example() string {
	exts := descriptors[l].extensions
	if len(exts) == 0 || exts[0] == "" {
		return "file"
	}
	return "file" + exts[0]
}

// launcher returns the argv prefix for a file with the given extension.
func (l Language) launcher(ext string) []string {
	d := descriptors[l]
	if prefix, ok := d.launchByExt[ext]; ok {
		return slices.Clone(prefix)
	}
	return slices.Clone(d.launch)
}
