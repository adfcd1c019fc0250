package repository

import "sort"

// entityTable is a map of rows keyed by a process-assigned id. Ids come from a
// counter that only moves forward, so a deleted id is never handed out again.
type entityTable[T any] struct {
	rows map[int]T
	seq  int
}

func newEntityTable[T any]() *entityTable[T] {
	return &entityTable[T]{rows: make(map[int]T)}
}

func (t *entityTable[T]) nextID() int {
	t.seq++
	return t.seq
}

func (t *entityTable[T]) get(id int) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *entityTable[T]) put(id int, row T) {
	t.rows[id] = row
}

func (t *entityTable[T]) remove(id int) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// scan visits rows in ascending id order until fn returns false.
func (t *entityTable[T]) scan(fn func(T) bool) {
	ids := make([]int, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if !fn(t.rows[id]) {
			return
		}
	}
}

// filter returns the rows matching keep, cloned and ordered by id.
func (t *entityTable[T]) filter(keep func(T) bool, clone func(T) T) []T {
	out := make([]T, 0)
	t.scan(func(row T) bool {
		if keep == nil || keep(row) {
			out = append(out, clone(row))
		}
		return true
	})
	return out
}

// find returns the first row in id order matching match.
func (t *entityTable[T]) find(match func(T) bool) (T, bool) {
	var (
		found T
		ok    bool
	)
	t.scan(func(row T) bool {
		if match(row) {
			found, ok = row, true
			return false
		}
		return true
	})
	return found, ok
}
