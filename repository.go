package inject

import (
	"sync"
	"sync/atomic"
)

// repository is the per-scope instance cache: at most one constructed value
// per serial slot. Storage is sized once at bootstrap from the known slot
// count and never resized. A failed construction must leave the slot empty.
type repository interface {
	access(serial int, provide Provider) (any, error)
}

type slotBox struct {
	value any
}

// lazyRepository publishes each slot with a compare-and-swap. Concurrent
// first accesses may run the provider more than once; only the first
// published result is ever returned, so unrelated slots never contend and
// no lock is held while constructing.
type lazyRepository struct {
	slots []atomic.Pointer[slotBox]
}

func newLazyRepository(slots int) *lazyRepository {
	return &lazyRepository{slots: make([]atomic.Pointer[slotBox], slots)}
}

func (r *lazyRepository) access(serial int, provide Provider) (any, error) {
	slot := &r.slots[serial]
	if box := slot.Load(); box != nil {
		return box.value, nil
	}
	value, err := provide()
	if err != nil {
		return nil, err
	}
	box := &slotBox{value: value}
	if !slot.CompareAndSwap(nil, box) {
		// Lost the publication race; the earlier result wins.
		box = slot.Load()
	}
	return box.value, nil
}

// serializedRepository guarantees the provider runs at most once per slot
// by holding a per-slot lock around construction. The published value is
// still read lock-free on the fast path.
type serializedRepository struct {
	slots []serializedSlot
}

type serializedSlot struct {
	mu    sync.Mutex
	value atomic.Pointer[slotBox]
}

func newSerializedRepository(slots int) *serializedRepository {
	return &serializedRepository{slots: make([]serializedSlot, slots)}
}

func (r *serializedRepository) access(serial int, provide Provider) (any, error) {
	slot := &r.slots[serial]
	if box := slot.value.Load(); box != nil {
		return box.value, nil
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if box := slot.value.Load(); box != nil {
		return box.value, nil
	}
	value, err := provide()
	if err != nil {
		return nil, err
	}
	slot.value.Store(&slotBox{value: value})
	return value, nil
}
