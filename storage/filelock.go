package storage

import (
	"os"
	"syscall"
	"time"
)

// FileLock guards the record store directory against concurrent runs.
// Two processes flushing the same store would interleave their YAML
// writes, so Open takes this lock for the lifetime of the Store. The
// lock is advisory, via flock(2) on a sidecar file next to the record
// files.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a lock handle over path + ".lock". Nothing is
// acquired until Lock is called.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Lock acquires the store's exclusive lock, polling until the timeout.
// Returns ErrLockTimeout when another run still holds the store.
func (l *FileLock) Lock(timeout time.Duration) error {
	var err error
	l.file, err = os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return &StorageError{Op: "lock", Entity: "store", ID: l.path, Err: err}
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		err = syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}

	l.file.Close()
	l.file = nil
	return ErrLockTimeout
}

// Unlock releases the store lock and removes the sidecar file. Safe to
// call on a lock that was never acquired.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	os.Remove(l.path)
	l.file = nil
	return nil
}
