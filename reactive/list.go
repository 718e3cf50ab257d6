// Package reactive provides an ordered list of independently mutable cells.
// Every cell gets a key when it is inserted, and that key is what identifies
// the cell: two cells holding equal values are still different entries.
package reactive

import (
	"iter"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Key identifies a cell for as long as it stays in its list. Keys are never
// reused.
type Key uuid.UUID

func NewKey() Key {
	return Key(uuid.New())
}

func ParseKey(s string) (Key, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Key{}, err
	}
	return Key(id), nil
}

func (k Key) String() string {
	return uuid.UUID(k).String()
}

func (k Key) MarshalText() ([]byte, error) {
	return uuid.UUID(k).MarshalText()
}

func (k *Key) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(k).UnmarshalText(data)
}

type Cell[T any] struct {
	mu    sync.RWMutex
	value T
}

func NewCell[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
}

// Update replaces the value with fn applied to it, atomically for this cell.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = fn(c.value)
}

// List is an insertion ordered map from Key to *Cell. The zero value is an
// empty list ready to use.
type List[T any] struct {
	mu    sync.RWMutex
	order []Key
	cells map[Key]*Cell[T]
}

func New[T any]() *List[T] {
	return &List[T]{}
}

// FromSlice builds a list holding values in order, each under a fresh key.
func FromSlice[T any](values []T) *List[T] {
	l := &List[T]{
		order: make([]Key, 0, len(values)),
		cells: make(map[Key]*Cell[T], len(values)),
	}
	for _, v := range values {
		key := NewKey()
		l.order = append(l.order, key)
		l.cells[key] = NewCell(v)
	}
	return l
}

// Push appends value under a new key and returns the key.
func (l *List[T]) Push(value T) Key {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := NewKey()
	l.put(key, NewCell(value))
	return key
}

// Remove drops the entry for key. Unknown keys are ignored.
func (l *List[T]) Remove(key Key) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.cells[key]; !ok {
		return
	}
	delete(l.cells, key)
	l.order = slices.DeleteFunc(l.order, func(k Key) bool { return k == key })
}

// Insert stores value under key in a new cell. An existing key keeps its
// position, an unknown key is appended.
func (l *List[T]) Insert(key Key, value T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.cells[key]; ok {
		l.cells[key] = NewCell(value)
		return
	}
	l.put(key, NewCell(value))
}

func (l *List[T]) put(key Key, cell *Cell[T]) {
	if l.cells == nil {
		l.cells = make(map[Key]*Cell[T])
	}
	l.order = append(l.order, key)
	l.cells[key] = cell
}

func (l *List[T]) Get(key Key) (*Cell[T], bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cell, ok := l.cells[key]
	return cell, ok
}

func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

func (l *List[T]) Keys() []Key {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.order)
}

// All yields the entries in insertion order. Each call walks the entries
// present when iteration starts, so the sequence can be restarted and
// mutating the list while ranging over it is safe.
func (l *List[T]) All() iter.Seq2[Key, *Cell[T]] {
	return func(yield func(Key, *Cell[T]) bool) {
		l.mu.RLock()
		order := slices.Clone(l.order)
		cells := make([]*Cell[T], len(order))
		for i, key := range order {
			cells[i] = l.cells[key]
		}
		l.mu.RUnlock()

		for i, key := range order {
			if !yield(key, cells[i]) {
				return
			}
		}
	}
}

// Values snapshots the current value of every cell, in order.
func (l *List[T]) Values() []T {
	values := make([]T, 0, l.Len())
	for _, cell := range l.All() {
		values = append(values, cell.Get())
	}
	return values
}
