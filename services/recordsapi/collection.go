package recordsapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/trezcool/masomo-portal/core/records"
)

// Collection is one remote entity collection, eg. /Students.
// Requests are authorized with the token set by WithToken.
type Collection[T any] struct {
	client   *Client
	resource string
}

func NewCollection[T any](client *Client, resource string) *Collection[T] {
	return &Collection[T]{client: client, resource: "/" + resource}
}

func (c *Collection[T]) itemPath(id string) string {
	return c.resource + "/" + url.PathEscape(id)
}

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := c.client.Call(ctx, http.MethodGet, c.resource, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	err := c.client.Call(ctx, http.MethodGet, c.itemPath(id), nil, &item)
	return item, err
}

func (c *Collection[T]) Create(ctx context.Context, item T) (T, error) {
	var created T
	err := c.client.Call(ctx, http.MethodPost, c.resource, item, &created)
	return created, err
}

func (c *Collection[T]) Update(ctx context.Context, id string, item T) (T, error) {
	var updated T
	err := c.client.Call(ctx, http.MethodPut, c.itemPath(id), item, &updated)
	return updated, err
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.client.Call(ctx, http.MethodDelete, c.itemPath(id), nil, nil)
}

// NewCatalog returns the remote collections of every entity type.
func NewCatalog(client *Client) records.Catalog {
	return records.Catalog{
		Students:  NewCollection[records.Student](client, records.StudentsResource),
		Staff:     NewCollection[records.Staff](client, records.StaffResource),
		Lecturers: NewCollection[records.Lecturer](client, records.LecturersResource),
		Lectures:  NewCollection[records.Lecture](client, records.LecturesResource),
		Subjects:  NewCollection[records.Subject](client, records.SubjectsResource),
		Marks:     NewCollection[records.Mark](client, records.MarksResource),
	}
}
