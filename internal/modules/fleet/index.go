// README: In-memory fleet index; the single source of truth for availability.
package fleet

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"citycab/internal/types"
)

type entry struct {
	vehicle   Vehicle // Available is not read from here
	available atomic.Bool
}

func (e *entry) snapshot() Vehicle {
	v := e.vehicle
	v.Available = e.available.Load()
	return v
}

// Index holds every registered vehicle in registration order. The slice and
// map are guarded by mu; availability is a per-vehicle atomic flag so
// Reserve is a compare-and-swap that never takes the write lock.
type Index struct {
	mu      sync.RWMutex
	entries []*entry
	byID    map[types.ID]*entry
	logger  *slog.Logger
}

func NewIndex(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{byID: make(map[types.ID]*entry), logger: logger}
}

// Register adds a vehicle as available.
func (x *Index) Register(v Vehicle) error {
	v.Available = true
	return x.add(v)
}

// restore adds a vehicle keeping its stored availability.
func (x *Index) restore(v Vehicle) error {
	return x.add(v)
}

func (x *Index) add(v Vehicle) error {
	if err := v.validate(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.byID[v.ID]; ok {
		return ErrDuplicateVehicle
	}
	e := &entry{vehicle: v}
	e.available.Store(v.Available)
	x.entries = append(x.entries, e)
	x.byID[v.ID] = e
	return nil
}

// Enumerate lists vehicles of the class (every class when empty) in
// registration order, optionally only the available ones.
func (x *Index) Enumerate(class Class, onlyAvailable bool) []Vehicle {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]Vehicle, 0, len(x.entries))
	for _, e := range x.entries {
		if class != "" && e.vehicle.Class != class {
			continue
		}
		v := e.snapshot()
		if onlyAvailable && !v.Available {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Reserve claims the vehicle iff it was available at the instant of the
// call. Unknown ids and already reserved vehicles return false.
func (x *Index) Reserve(id types.ID) bool {
	x.mu.RLock()
	e, ok := x.byID[id]
	x.mu.RUnlock()
	if !ok {
		return false
	}
	return e.available.CompareAndSwap(true, false)
}

// Release makes the vehicle available again. Releasing an unknown id is a
// logged no-op.
func (x *Index) Release(id types.ID) bool {
	x.mu.RLock()
	e, ok := x.byID[id]
	x.mu.RUnlock()
	if !ok {
		x.logger.Warn("release of unknown vehicle", "vehicle_id", id)
		return false
	}
	e.available.Store(true)
	return true
}

func (x *Index) Get(id types.ID) (Vehicle, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.byID[id]
	if !ok {
		return Vehicle{}, false
	}
	return e.snapshot(), true
}

func (x *Index) Snapshot() []Vehicle {
	return x.Enumerate("", false)
}

func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}
