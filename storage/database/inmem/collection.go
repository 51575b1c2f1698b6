package inmemdb

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/masomo-portal/core/records"
)

// Collection is a records.Collection kept in memory. List returns items in insertion order.
type Collection[T records.Record[T]] struct {
	mutex sync.RWMutex
	order []string
	table map[string]T
}

var _ records.Collection[records.Student] = (*Collection[records.Student])(nil)

// NewCollection returns a collection holding `seed`. Seed items without an ID get one.
func NewCollection[T records.Record[T]](seed ...T) *Collection[T] {
	c := &Collection[T]{table: make(map[string]T, len(seed))}
	for _, item := range seed {
		c.insert(item)
	}
	return c
}

func (c *Collection[T]) insert(item T) T {
	id := item.RecordID()
	if id == "" {
		id = uuid.NewString()
		item = item.WithRecordID(id)
	}
	if _, exists := c.table[id]; !exists {
		c.order = append(c.order, id)
	}
	c.table[id] = item
	return item
}

func (c *Collection[T]) List(_ context.Context) ([]T, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	items := make([]T, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.table[id])
	}
	return items, nil
}

func (c *Collection[T]) Get(_ context.Context, id string) (T, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if item, ok := c.table[id]; ok {
		return item, nil
	}
	var zero T
	return zero, records.ErrNotFound
}

// Create stores `item` under a new ID; any ID it carries is ignored.
func (c *Collection[T]) Create(_ context.Context, item T) (T, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.insert(item.WithRecordID("")), nil
}

func (c *Collection[T]) Update(_ context.Context, id string, item T) (T, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.table[id]; !ok {
		var zero T
		return zero, records.ErrNotFound
	}
	item = item.WithRecordID(id)
	c.table[id] = item
	return item, nil
}

func (c *Collection[T]) Delete(_ context.Context, id string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.table[id]; !ok {
		return records.ErrNotFound
	}
	delete(c.table, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}
