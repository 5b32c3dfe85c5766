//go:build !windows

package testcase

import "os"

// osReplace performs the atomic rename. On POSIX, os.Rename over an
// existing destination is already atomic within the same filesystem.
func osReplace(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// syncDir best-effort fsyncs the containing directory so the rename
// itself survives a crash, not just the file contents. Failure here is
// not surfaced: the rename already completed, and not every filesystem
// supports directory fsync.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}
