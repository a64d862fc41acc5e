package shell

import (
	"fmt"
	"sync"
)

// RegistryFullError reports that every background job slot is occupied.
// The job still runs, but untracked: it will not be reaped or killed at
// shutdown.
type RegistryFullError struct {
	Capacity int
}

func (e *RegistryFullError) Error() string {
	return fmt.Sprintf("background job registry full (%d slots)", e.Capacity)
}

// Registry is the fixed-capacity set of outstanding background PIDs.
// A zero slot is empty; a PID appears at most once.
type Registry struct {
	mu    sync.Mutex
	slots []int
}

func NewRegistry(capacity int) *Registry {
	return &Registry{slots: make([]int, capacity)}
}

// Add records pid in the first empty slot.
func (r *Registry) Add(pid int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, slot := range r.slots {
		if slot == 0 {
			r.slots[i] = pid
			return nil
		}
	}
	return &RegistryFullError{Capacity: len(r.slots)}
}

// Remove clears pid's slot, reporting whether it was tracked. Removal is
// idempotent: a reaped PID is never reported twice.
func (r *Registry) Remove(pid int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, slot := range r.slots {
		if slot == pid {
			r.slots[i] = 0
			return true
		}
	}
	return false
}

// Pids returns the live PIDs in slot order.
func (r *Registry) Pids() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pids := make([]int, 0, len(r.slots))
	for _, slot := range r.slots {
		if slot != 0 {
			pids = append(pids, slot)
		}
	}
	return pids
}

func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		r.slots[i] = 0
	}
}
