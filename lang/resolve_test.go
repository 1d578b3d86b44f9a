package lang

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file under dir with the given mode and returns its path.
func writeFile(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func skipWithoutPermissionBits(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  Language
		ok    bool
	}{
		{"python", Python, true},
		{"PY", Python, true},
		{" node ", JavaScript, true},
		{"nodejs", JavaScript, true},
		{"rb", Ruby, true},
		{"c", C, true},
		{"c++", CPP, true},
		{"cplusplus", CPP, true},
		{"C#", CSharp, true},
		{"cs", CSharp, true},
		{"exe", Exe, true},
		{"jar", Java, true},
		{"rs", Rust, true},
		{"golang", Go, true},
		{"cobol", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLanguage(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanguages_AllDescribed(t *testing.T) {
	langs := Languages()
	require.Len(t, langs, len(descriptors))
	for _, l := range langs {
		assert.NotEqual(t, "UNKNOWN", l.String())
		assert.NotEmpty(t, l.Extensions(), "language %s has no extensions", l)
	}
	assert.Equal(t, "UNKNOWN", Language(0).String())
}

func TestResolve_Scripts(t *testing.T) {
	dir := t.TempDir()
	py := writeFile(t, dir, "worker.py", 0o644)
	js := writeFile(t, dir, "worker.js", 0o644)
	rb := writeFile(t, dir, "worker.rb", 0o644)
	jar := writeFile(t, dir, "worker.jar", 0o644)

	tests := []struct {
		language string
		file     string
		want     []string
	}{
		{"python", py, []string{"python", py}},
		{"py", py, []string{"python", py}},
		{"javascript", js, []string{"node", js}},
		{"NODE", js, []string{"node", js}},
		{"ruby", rb, []string{"ruby", rb}},
		{"java", jar, []string{"java", "-jar", jar}},
		{"jar", jar, []string{"java", "-jar", jar}},
	}

	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			argv, err := Resolve(tt.language, tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, argv)
		})
	}
}

func TestResolve_Compiled(t *testing.T) {
	skipWithoutPermissionBits(t)
	dir := t.TempDir()
	bin := writeFile(t, dir, "worker", 0o755)
	out := writeFile(t, dir, "worker.out", 0o755)
	dll := writeFile(t, dir, "worker.dll", 0o755)
	goSrc := writeFile(t, dir, "main.go", 0o755)
	rs := writeFile(t, dir, "main.rs", 0o755)

	tests := []struct {
		name     string
		language string
		file     string
		want     []string
	}{
		{"c binary", "c", bin, []string{bin}},
		{"cpp out", "cpp", out, []string{out}},
		{"exe", "exe", bin, []string{bin}},
		{"csharp dll", "c#", dll, []string{"dotnet", dll}},
		{"go binary", "go", bin, []string{bin}},
		{"go source", "golang", goSrc, []string{"go", "run", goSrc}},
		{"rust source", "rust", rs, []string{rs}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, err := Resolve(tt.language, tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.want, argv)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	dir := t.TempDir()
	py := writeFile(t, dir, "worker.py", 0o644)

	first, err := Resolve("python", py)
	require.NoError(t, err)
	second, err := Resolve("python", py)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_ExtensionCheckedBeforeExistence(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")

	for _, language := range []string{"python", "js", "ruby", "java"} {
		t.Run(language, func(t *testing.T) {
			_, err := Resolve(language, missing)
			require.Error(t, err)
			assert.True(t, IsKind(err, ErrorInvalidExtension), "got %v", err)
			assert.Contains(t, err.Error(), missing)
			assert.Contains(t, err.Error(), language)
		})
	}
}

func TestResolve_InvalidExtensionMessageNamesExample(t *testing.T) {
	_, err := Resolve("python", "script.rb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"file.py"`)
}

func TestResolve_EmptyExtensionAcceptsAny(t *testing.T) {
	skipWithoutPermissionBits(t)
	dir := t.TempDir()
	sh := writeFile(t, dir, "worker.sh", 0o755)

	argv, err := Resolve("exe", sh)
	require.NoError(t, err)
	assert.Equal(t, []string{sh}, argv)
}

func TestResolve_NotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.py")

	_, err := Resolve("python", missing)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorNotFound))
	assert.Contains(t, err.Error(), "file not found")
}

func TestResolve_NotAFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pkg.py")
	require.NoError(t, os.Mkdir(dir, 0o755))

	_, err := Resolve("python", dir)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorNotAFile))
	assert.Contains(t, err.Error(), "path is not a file")
}

func TestResolve_NotExecutable(t *testing.T) {
	skipWithoutPermissionBits(t)
	bin := writeFile(t, t.TempDir(), "worker.out", 0o644)

	_, err := Resolve("c", bin)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorNotExecutable))
	assert.Contains(t, err.Error(), "file is not executable")
}

func TestResolve_NotReadable(t *testing.T) {
	skipWithoutPermissionBits(t)
	if os.Geteuid() == 0 {
		t.Skip("root bypasses read permission checks")
	}
	py := writeFile(t, t.TempDir(), "worker.py", 0o000)

	_, err := Resolve("python", py)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorNotReadable))
}

func TestResolve_Unsupported(t *testing.T) {
	file := writeFile(t, t.TempDir(), "worker.cob", 0o644)

	_, err := Resolve("cobol", file)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorUnsupported))
	assert.Contains(t, err.Error(), "unsupported language: cobol")
}

func TestResolve_UnsupportedMissingFileReportsNotFound(t *testing.T) {
	_, err := Resolve("cobol", filepath.Join(t.TempDir(), "worker.cob"))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrorNotFound))
}

func TestResolve_RelativeCompiledGetsPrefix(t *testing.T) {
	skipWithoutPermissionBits(t)
	dir := t.TempDir()
	writeFile(t, dir, "worker", 0o755)
	t.Chdir(dir)

	argv, err := Resolve("c", "worker")
	require.NoError(t, err)
	assert.Equal(t, []string{"./worker"}, argv)

	argv, err = Resolve("c", "./worker")
	require.NoError(t, err)
	assert.Equal(t, []string{"./worker"}, argv)
}

func TestResolve_RelativeScriptUnchanged(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "worker.py", 0o644)
	t.Chdir(dir)

	argv, err := Resolve("python", "worker.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "worker.py"}, argv)
}

func TestResolver_InterpreterOverride(t *testing.T) {
	skipWithoutPermissionBits(t)
	dir := t.TempDir()
	py := writeFile(t, dir, "worker.py", 0o644)
	bin := writeFile(t, dir, "worker", 0o755)

	r := &Resolver{Interpreters: map[Language]string{Python: "python3", C: "ignored"}}

	argv, err := r.Resolve("python", py)
	require.NoError(t, err)
	assert.Equal(t, []string{"python3", py}, argv)

	argv, err = r.Resolve("c", bin)
	require.NoError(t, err)
	assert.Equal(t, []string{bin}, argv, "direct targets have no interpreter to override")
}

func TestError_Unwrap(t *testing.T) {
	inner := os.ErrPermission
	err := &Error{Kind: ErrorStat, Msg: "cannot stat x", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "cannot stat x: permission denied", err.Error())
	assert.Equal(t, "stat", err.Kind.String())
}
