// Package repository provides the in-memory persistence of the development
// backend. Every record kind lives in its own Table; nothing survives a
// restart.
package repository

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write would break a uniqueness rule.
	ErrConflict = errors.New("record already exists")
)

// Table is an insertion-ordered set of rows keyed by id. It is safe for
// concurrent use.
type Table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	order []string
	// key extracts the primary key of a row.
	key func(T) string
	// conflict reports whether two distinct rows may not coexist. May be nil.
	conflict func(a, b T) bool
}

// NewTable creates an empty table. conflict may be nil.
func NewTable[T any](key func(T) string, conflict func(a, b T) bool) *Table[T] {
	return &Table[T]{
		rows:     make(map[string]T),
		key:      key,
		conflict: conflict,
	}
}

// Insert adds a new row. It fails with ErrConflict when the key is taken
// or the row clashes with an existing one.
func (t *Table[T]) Insert(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.key(v)
	if _, ok := t.rows[id]; ok {
		return ErrConflict
	}
	if t.clashesLocked(id, v) {
		return ErrConflict
	}
	t.rows[id] = v
	t.order = append(t.order, id)
	return nil
}

// Get returns the row stored under id.
func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.rows[id]
	if !ok {
		return zero, ErrNotFound
	}
	return v, nil
}

// Find returns the first row, in insertion order, for which match is true.
func (t *Table[T]) Find(ctx context.Context, match func(T) bool) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, id := range t.order {
		if v := t.rows[id]; match(v) {
			return v, nil
		}
	}
	return zero, ErrNotFound
}

// Update applies fn to a copy of the row and stores the result unless fn
// fails or the result clashes with another row. The key may not change.
func (t *Table[T]) Update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.rows[id]
	if !ok {
		return zero, ErrNotFound
	}
	if err := fn(&v); err != nil {
		return zero, err
	}
	if t.key(v) != id {
		return zero, errors.New("repository: update changed the row key")
	}
	if t.clashesLocked(id, v) {
		return zero, ErrConflict
	}
	t.rows[id] = v
	return v, nil
}

// Delete removes the row stored under id.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	t.removeLocked(func(rowID string, _ T) bool { return rowID == id })
	return nil
}

// DeleteWhere removes every row for which match is true and reports how
// many were removed.
func (t *Table[T]) DeleteWhere(ctx context.Context, match func(T) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.removeLocked(func(_ string, v T) bool { return match(v) }), nil
}

// Filter returns the matching rows in insertion order. A nil match
// returns every row.
func (t *Table[T]) Filter(ctx context.Context, match func(T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		v := t.rows[id]
		if match == nil || match(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Toggle atomically removes the rows for which match is true, or, when
// there are none, inserts create(). It reports whether a row was inserted.
func (t *Table[T]) Toggle(ctx context.Context, match func(T) bool, create func() T) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.removeLocked(func(_ string, v T) bool { return match(v) }) > 0 {
		return false, nil
	}
	v := create()
	id := t.key(v)
	if _, ok := t.rows[id]; ok {
		return false, ErrConflict
	}
	t.rows[id] = v
	t.order = append(t.order, id)
	return true, nil
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *Table[T]) clashesLocked(id string, v T) bool {
	if t.conflict == nil {
		return false
	}
	for otherID, other := range t.rows {
		if otherID != id && t.conflict(v, other) {
			return true
		}
	}
	return false
}

func (t *Table[T]) removeLocked(match func(string, T) bool) int {
	kept := t.order[:0]
	removed := 0
	for _, id := range t.order {
		if match(id, t.rows[id]) {
			delete(t.rows, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	clear(t.order[len(kept):])
	t.order = kept
	return removed
}
