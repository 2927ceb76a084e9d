// Package symbols provides symbol tables that map addresses to names, like special
// function register or configuration register names.
package symbols

import (
	"sort"

	"github.com/retroenv/retrogolib/set"
)

// Manager provides generic symbol tracking.
// T is the type of symbol being managed (e.g., a register name).
type Manager[T any] struct {
	items map[uint32]T
	used  set.Set[uint32]
}

// New creates a new symbol manager.
func New[T any]() *Manager[T] {
	return &Manager[T]{
		items: make(map[uint32]T),
		used:  set.New[uint32](),
	}
}

// Get returns the item at the given address.
func (m *Manager[T]) Get(address uint32) (T, bool) {
	item, ok := m.items[address]
	return item, ok
}

// Set sets the item at the given address.
func (m *Manager[T]) Set(address uint32, item T) {
	m.items[address] = item
}

// Len returns the number of items in the manager.
func (m *Manager[T]) Len() int {
	return len(m.items)
}

// UsedAddresses returns the addresses of all items that were marked as used, in
// ascending order. A nil manager has no used items.
func (m *Manager[T]) UsedAddresses() []uint32 {
	if m == nil {
		return nil
	}
	var addresses []uint32
	for address := range m.items {
		if m.used.Contains(address) {
			addresses = append(addresses, address)
		}
	}
	sort.Slice(addresses, func(i, j int) bool {
		return addresses[i] < addresses[j]
	})
	return addresses
}

// MarkUsed marks an address as used.
func (m *Manager[T]) MarkUsed(address uint32) {
	m.used.Add(address)
}

// IsUsed returns whether an address is marked as used.
func (m *Manager[T]) IsUsed(address uint32) bool {
	return m.used.Contains(address)
}
