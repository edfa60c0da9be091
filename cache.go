package silo

import "fmt"

func newSimpleCache[T any](capacity int) *SimpleCache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: capacity,
	}
}

// GetIndex returns the slot index a key was registered under.
func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

// GetItem returns a pointer to the item stored at index.
func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

// Register appends item under key and returns its slot index. Registering
// the same key twice is an error, matching the component registry's need
// for name uniqueness.
func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if _, exists := c.itemIndices[key]; exists {
		return -1, fmt.Errorf("silo: %q already registered", key)
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, fmt.Errorf("silo: cache at maximum capacity (%d)", c.maxCapacity)
	}

	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)

	return idx, nil
}
