package dummydb

import (
	"sync"

	"github.com/darasahq/darasa/core/lecture"
	"github.com/darasahq/darasa/core/user"
)

type (
	DB struct {
		user    *userTable
		lecture *lectureTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	lectureTable struct {
		sync.RWMutex
		table map[string]*lecture.Summary
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[string]*user.User)},
		lecture: &lectureTable{table: make(map[string]*lecture.Summary)},
	}
	return db, nil
}
