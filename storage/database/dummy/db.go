// Package dummydb implements the repositories in memory. It backs tests and local runs without a database.
package dummydb

import (
	"sync"

	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/thread"
	"github.com/trezcool/gradebook/core/user"
)

type (
	DB struct {
		user   *userTable
		grade  *gradeTable
		thread *threadTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	gradeTable struct {
		sync.RWMutex
		table map[int]grade.GradeRecord
	}

	threadTable struct {
		sync.RWMutex
		table []thread.Thread
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:   &userTable{table: make(map[string]*user.User)},
		grade:  &gradeTable{table: make(map[int]grade.GradeRecord)},
		thread: &threadTable{},
	}
	return db, nil
}
