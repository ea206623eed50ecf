package lifecycle

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// MemoryResource is an in-process SharedResource, suitable for
// single-process embedders and tests.
type MemoryResource struct {
	mu       sync.Mutex
	count    int
	teardown bool
	// OnTeardown, if set, runs when the last participant leaves
	// after a system release was requested
	OnTeardown func()
}

// Acquire implements SharedResource
func (r *MemoryResource) Acquire() (first bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return r.count == 1, nil
}

// Release implements SharedResource
func (r *MemoryResource) Release(system bool) (last bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return false, errors.New("no participants")
	}
	r.count--
	r.teardown = r.teardown || system
	last = r.count == 0
	if last && r.teardown {
		r.teardown = false
		if r.OnTeardown != nil {
			r.OnTeardown()
		}
	}
	return last, nil
}

// Participants returns the number of active participants
func (r *MemoryResource) Participants() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// FileResource is a cross-process SharedResource backed by a counter
// file, serialized by an exclusively created lock file in the same
// directory.
type FileResource struct {
	// Dir is the directory holding the counter and lock files
	Dir string
	// LockTimeout bounds the wait for the lock file; zero means one
	// second
	LockTimeout time.Duration
}

const (
	countFile    = "participants"
	lockFile     = "participants.lock"
	teardownFile = "teardown"
)

// Acquire implements SharedResource
func (r *FileResource) Acquire() (first bool, err error) {
	unlock, err := r.lock()
	if err != nil {
		return false, err
	}
	defer unlock()

	n, err := r.readCount()
	if err != nil {
		return false, err
	}
	if err = r.writeCount(n + 1); err != nil {
		return false, err
	}
	return n == 0, nil
}

// Release implements SharedResource
func (r *FileResource) Release(system bool) (last bool, err error) {
	unlock, err := r.lock()
	if err != nil {
		return false, err
	}
	defer unlock()

	n, err := r.readCount()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, errors.New("no participants")
	}
	if system {
		if err = os.WriteFile(filepath.Join(r.Dir, teardownFile), nil, 0o644); err != nil {
			return false, errors.Wrap(err, "recording teardown request")
		}
	}
	if n--; n > 0 {
		return false, r.writeCount(n)
	}

	// last participant out: tear shared state down if any release
	// requested it, otherwise leave the zero counter behind
	if _, serr := os.Stat(filepath.Join(r.Dir, teardownFile)); serr == nil {
		os.Remove(filepath.Join(r.Dir, teardownFile))
		return true, os.Remove(filepath.Join(r.Dir, countFile))
	}
	return true, r.writeCount(0)
}

func (r *FileResource) readCount() (int, error) {
	raw, err := os.ReadFile(filepath.Join(r.Dir, countFile))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "reading participant count")
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || n < 0 {
		return 0, errors.Errorf("corrupt participant count %q", raw)
	}
	return n, nil
}

func (r *FileResource) writeCount(n int) error {
	err := os.WriteFile(filepath.Join(r.Dir, countFile), []byte(strconv.Itoa(n)+"\n"), 0o644)
	return errors.Wrap(err, "writing participant count")
}

// lock creates the lock file exclusively, retrying until LockTimeout
func (r *FileResource) lock() (unlock func(), err error) {
	timeout := r.LockTimeout
	if timeout == 0 {
		timeout = time.Second
	}
	path := filepath.Join(r.Dir, lockFile)
	for deadline := time.Now().Add(timeout); ; {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrap(err, "creating lock file")
		}
		if time.Now().After(deadline) {
			return nil, errors.Errorf("lock file %s held past timeout", path)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
