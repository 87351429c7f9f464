//go:build unix

package offtarget

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileLock is an exclusive advisory lock held across processes.
type fileLock struct {
	f *os.File
}

// lockFile blocks until it holds an exclusive flock(2) on path, creating the file if needed.
func lockFile(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) unlock() error {
	if err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}
