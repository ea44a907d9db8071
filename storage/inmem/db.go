package inmemdb

import (
	"sort"
	"sync"

	"github.com/trezcool/coachdesk/core/academy"
	"github.com/trezcool/coachdesk/core/admin"
	"github.com/trezcool/coachdesk/core/sms"
)

type (
	table[T any] struct {
		t     map[string]T
		mutex sync.RWMutex
	}

	// DB keeps every collection in memory. Used by tests and local runs.
	DB struct {
		admins    *table[admin.Administrator]
		batches   *table[academy.Batch]
		students  *table[academy.Student]
		teachers  *table[academy.Teacher]
		results   *table[academy.Result]
		templates *table[sms.Template]

		logMutex sync.RWMutex
		logs     []sms.LogEntry
	}
)

func newTable[T any]() *table[T] {
	return &table[T]{t: make(map[string]T)}
}

func Open() *DB {
	return &DB{
		admins:    newTable[admin.Administrator](),
		batches:   newTable[academy.Batch](),
		students:  newTable[academy.Student](),
		teachers:  newTable[academy.Teacher](),
		results:   newTable[academy.Result](),
		templates: newTable[sms.Template](),
	}
}

func (tbl *table[T]) get(id string) (T, bool) {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()
	row, ok := tbl.t[id]
	return row, ok
}

// query returns the rows matching `keep` (all when nil), sorted with `less`.
func (tbl *table[T]) query(keep func(T) bool, less func(a, b T) bool) []T {
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()

	rows := make([]T, 0, len(tbl.t))
	for _, row := range tbl.t {
		if keep == nil || keep(row) {
			rows = append(rows, row)
		}
	}
	if less != nil {
		sort.Slice(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	}
	return rows
}

// save stores `row` unless `conflict` reports a clash with another row.
// When `mustExist` is set, a missing id returns `notFound`.
func (tbl *table[T]) save(id string, row T, mustExist bool, notFound error, conflict func(other T) error) (T, error) {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()

	var zero T
	if _, ok := tbl.t[id]; mustExist && !ok {
		return zero, notFound
	}
	if conflict != nil {
		for otherID, other := range tbl.t {
			if otherID == id {
				continue
			}
			if err := conflict(other); err != nil {
				return zero, err
			}
		}
	}
	tbl.t[id] = row
	return row, nil
}

func (tbl *table[T]) delete(id string, notFound error) error {
	tbl.mutex.Lock()
	defer tbl.mutex.Unlock()
	if _, ok := tbl.t[id]; !ok {
		return notFound
	}
	delete(tbl.t, id)
	return nil
}
