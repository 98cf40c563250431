// Package lockfile serializes bisection sessions per repository. Mutating
// commands hold an exclusive flock on .git/culprit-lock for their lifetime
// so two culprit processes cannot interleave ref updates; read-only
// commands probe the same lock to report an in-flight run. The lock is
// advisory and the kernel releases it if the holder dies.
package lockfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const lockFileName = "culprit-lock"

// ErrLockBusy indicates another process holds the session lock.
var ErrLockBusy = errors.New("another culprit process is using this repository")

// LockInfo describes the process holding the session lock.
type LockInfo struct {
	PID       int       `json:"pid"`
	ParentPID int       `json:"parent_pid"`
	Repo      string    `json:"repo"`
	Version   string    `json:"version"`
	StartedAt time.Time `json:"started_at"`
}

// Lock is a held session lock. Release it when the command finishes.
type Lock struct {
	f    *os.File
	path string
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Acquire takes the exclusive session lock for the repository whose git
// directory is gitDir. It does not block: if another process holds the
// lock, the returned error wraps ErrLockBusy and names the holder when
// its metadata is readable.
func Acquire(gitDir, repo, version string) (*Lock, error) {
	path := filepath.Join(gitDir, lockFileName)
	// #nosec G304 -- path is derived from the repository git directory
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := FlockExclusiveNonBlock(f); err != nil {
		f.Close()
		if errors.Is(err, ErrLockBusy) {
			if info, rerr := ReadLockInfo(gitDir); rerr == nil && info.PID != 0 {
				return nil, fmt.Errorf("%w (pid %d since %s)",
					ErrLockBusy, info.PID, info.StartedAt.Format(time.RFC3339))
			}
			return nil, ErrLockBusy
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	info := LockInfo{
		PID:       os.Getpid(),
		ParentPID: os.Getppid(),
		Repo:      repo,
		Version:   version,
		StartedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(info)
	if err != nil {
		FlockUnlock(f)
		f.Close()
		return nil, fmt.Errorf("encode lock info: %w", err)
	}
	if err := f.Truncate(0); err == nil {
		_, err = f.WriteAt(data, 0)
	}
	if err != nil {
		FlockUnlock(f)
		f.Close()
		return nil, fmt.Errorf("write lock info: %w", err)
	}

	return &Lock{f: f, path: path}, nil
}

// Release drops the lock and closes the file. The lock file itself stays
// behind; the flock is what serializes access, not the file's existence.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := FlockUnlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}

// ReadLockInfo reads holder metadata from the lock file in gitDir.
// The content is best-effort: a process killed between taking the flock
// and writing its info leaves the file empty or stale.
func ReadLockInfo(gitDir string) (*LockInfo, error) {
	path := filepath.Join(gitDir, lockFileName)
	// #nosec G304 -- path is derived from the repository git directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lock file: %w", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse lock file %s: %w", path, err)
	}
	return &info, nil
}

// Probe reports whether some other process currently holds the session
// lock, without taking it. A shared lock succeeds alongside other shared
// locks and fails only against a held exclusive lock, which is exactly
// the signal wanted. Holder metadata is included when readable.
func Probe(gitDir string) (bool, *LockInfo) {
	path := filepath.Join(gitDir, lockFileName)
	// #nosec G304 -- path is derived from the repository git directory
	f, err := os.Open(path)
	if err != nil {
		return false, nil
	}
	defer f.Close()

	if err := FlockSharedNonBlock(f); err != nil {
		var info *LockInfo
		if i, rerr := ReadLockInfo(gitDir); rerr == nil {
			info = i
		}
		return true, info
	}
	FlockUnlock(f)
	return false, nil
}
