//go:build unix

package lang

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// isExecutable requires at least one executable permission bit.
func isExecutable(info fs.FileInfo) bool {
	return info.Mode().Perm()&0o111 != 0
}

// checkReadable asks the kernel whether this process may read path.
func checkReadable(path string) error {
	return unix.Access(path, unix.R_OK)
}
