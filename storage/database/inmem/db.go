// Package inmemdb provides map-backed implementations of the storage
// repositories. It is meant for tests and local experiments, not production.
package inmemdb

import (
	"sync"

	"github.com/darasa-app/darasa/core/billing"
	"github.com/darasa-app/darasa/core/catalog"
	"github.com/darasa-app/darasa/core/user"
)

type DB struct {
	mutex sync.RWMutex
	seq   int // insertion order, stands in for created_at ordering

	users         map[string]user.User
	courses       map[string]courseRec
	lessons       map[string]lessonRec
	payments      map[string]paymentRec
	subscriptions map[string]catalog.Subscription // keyed userID + "\x00" + courseID
}

type courseRec struct {
	catalog.Course
	seq int
}

type lessonRec struct {
	catalog.Lesson
	seq int
}

type paymentRec struct {
	billing.Payment
	seq int
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]user.User),
		courses:       make(map[string]courseRec),
		lessons:       make(map[string]lessonRec),
		payments:      make(map[string]paymentRec),
		subscriptions: make(map[string]catalog.Subscription),
	}
}

func (db *DB) nextSeq() int {
	db.seq++
	return db.seq
}

func subKey(userID, courseID string) string {
	return userID + "\x00" + courseID
}
