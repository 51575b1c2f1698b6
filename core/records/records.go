// Package records holds the school records shown by the portal (students, staff,
// lecturers, lectures, subjects and marks) and the list screens that present them.
package records

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrUnauthorized means the records API refused the session token.
	ErrUnauthorized = errors.New("records api refused the session token")
)

// Record is implemented by every entity type.
type Record[T any] interface {
	RecordID() string
	WithRecordID(id string) T
}

// Collection is a CRUD store of one entity type. Get, Update and Delete return
// ErrNotFound for an unknown id.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, item T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Catalog groups the collections of a records backend.
type Catalog struct {
	Students  Collection[Student]
	Staff     Collection[Staff]
	Lecturers Collection[Lecturer]
	Lectures  Collection[Lecture]
	Subjects  Collection[Subject]
	Marks     Collection[Mark]
}

// API resource names
const (
	StudentsResource  = "Students"
	StaffResource     = "Staff"
	LecturersResource = "Lecturers"
	LecturesResource  = "Lectures"
	SubjectsResource  = "Subjects"
	MarksResource     = "Marks"
)
