package spatial

import "errors"

// ErrEntryNotFound is returned when removing an entry from a cell that does
// not hold it.
var ErrEntryNotFound = errors.New("spatial: entry not found in cell")

// Cell is one fixed box of the partition and the entries currently inside it.
type Cell struct {
	Box     AABB
	entries []Entity
}

func newCell(box AABB) *Cell {
	return &Cell{
		Box:     box,
		entries: make([]Entity, 0, 8), // pre-allocate small capacity
	}
}

// Add appends an entry. Entry order carries no meaning.
func (c *Cell) Add(e Entity) {
	c.entries = append(c.entries, e)
}

// Remove deletes an entry, returning ErrEntryNotFound if the cell does not
// hold it.
func (c *Cell) Remove(e Entity) error {
	for i, entry := range c.entries {
		if entry == e {
			// Swap-remove; order carries no meaning.
			last := len(c.entries) - 1
			c.entries[i] = c.entries[last]
			c.entries[last] = nil
			c.entries = c.entries[:last]
			return nil
		}
	}
	return ErrEntryNotFound
}

// Empty reports whether the cell holds no entries.
func (c *Cell) Empty() bool {
	return len(c.entries) == 0
}

// Entries returns the cell's current entries. The slice is owned by the cell
// and invalidated by the next mutation.
func (c *Cell) Entries() []Entity {
	return c.entries
}

// MakeEmpty drops all entries, keeping capacity.
func (c *Cell) MakeEmpty() {
	for i := range c.entries {
		c.entries[i] = nil
	}
	c.entries = c.entries[:0]
}
