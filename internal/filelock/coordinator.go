// Package filelock provides per-filename mutual exclusion so concurrent
// readers, writers and the cleanup sweep never race on the same cached file.
package filelock

import "sync"

// Coordinator owns a lazily-populated map of per-file locks. The registry
// mutex guards only lock creation; the per-file lock guards the file's
// content.
type Coordinator struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator creates an empty coordinator
func NewCoordinator() *Coordinator {
	return &Coordinator{
		locks: make(map[string]*sync.Mutex),
	}
}

func (c *Coordinator) lock(filename string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[filename]
	if !ok {
		l = &sync.Mutex{}
		c.locks[filename] = l
	}
	return l
}

// Acquire blocks until the lock for filename is held and returns an unlock
// function for a scoped hold.
func (c *Coordinator) Acquire(filename string) func() {
	l := c.lock(filename)
	l.Lock()
	return l.Unlock
}

// TryAcquire attempts a non-blocking acquire. It returns an unlock function
// and true when the lock was taken, or nil and false when the file is in
// active use.
func (c *Coordinator) TryAcquire(filename string) (func(), bool) {
	l := c.lock(filename)
	if !l.TryLock() {
		return nil, false
	}
	return l.Unlock, true
}

// Forget drops the lock entry for filename. Callers must still hold the
// lock and have deleted the underlying file; forgetting after unlocking
// leaves a window where another acquirer holds a lock with no entry.
func (c *Coordinator) Forget(filename string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, filename)
}

// Len returns the number of tracked lock entries
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}
