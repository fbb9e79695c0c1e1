package platform

import (
	"os"
	"runtime"
)

// Chmod sets permission bits. It is a no-op on Windows, which has no
// Unix permission bits.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// CheckPerm returns the permission bits of path and whether they equal
// want. On Windows the bits are not meaningful and always match.
func CheckPerm(path string, want os.FileMode) (os.FileMode, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false, err
	}
	perm := info.Mode().Perm()
	if runtime.GOOS == "windows" {
		return perm, true, nil
	}
	return perm, perm == want, nil
}
