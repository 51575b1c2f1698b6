// Package inmemdb keeps accounts and school records in process memory.
package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-portal/core/records"
	"github.com/trezcool/masomo-portal/core/user"
)

type (
	DB struct {
		user *userTable

		Students  *Collection[records.Student]
		Staff     *Collection[records.Staff]
		Lecturers *Collection[records.Lecturer]
		Lectures  *Collection[records.Lecture]
		Subjects  *Collection[records.Subject]
		Marks     *Collection[records.Mark]
	}

	userTable struct {
		table map[string]*user.User
		pkSeq int
		mutex sync.RWMutex
	}
)

// Open returns an empty database.
func Open() *DB {
	return OpenWith(records.Dataset{})
}

// OpenWith returns a database holding `seed`.
func OpenWith(seed records.Dataset) *DB {
	return &DB{
		user:      &userTable{table: make(map[string]*user.User)},
		Students:  NewCollection(seed.Students...),
		Staff:     NewCollection(seed.Staff...),
		Lecturers: NewCollection(seed.Lecturers...),
		Lectures:  NewCollection(seed.Lectures...),
		Subjects:  NewCollection(seed.Subjects...),
		Marks:     NewCollection(seed.Marks...),
	}
}

// Catalog exposes the record collections behind the records.Collection interface.
func (db *DB) Catalog() records.Catalog {
	return records.Catalog{
		Students:  db.Students,
		Staff:     db.Staff,
		Lecturers: db.Lecturers,
		Lectures:  db.Lectures,
		Subjects:  db.Subjects,
		Marks:     db.Marks,
	}
}
