// /home/krylon/go/src/github.com/blicero/asclepius/database/pool.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-04 17:29:16 krylon>

package database

import (
	"log"
	"sync"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/logdomain"
)

// Pool is a pool of database connections. Since access to the
// underlying file is serialized anyway, the pool mainly saves us the
// overhead of opening and initializing connections over and over.
type Pool struct {
	log  *log.Logger
	lock sync.Mutex
	cond *sync.Cond
	pool []*Database
}

// NewPool opens a fresh database Pool with the given number of
// connections to the application database.
func NewPool(cnt int) (*Pool, error) {
	var (
		err  error
		pool = &Pool{
			pool: make([]*Database, 0, cnt),
		}
	)

	pool.cond = sync.NewCond(&pool.lock)

	if pool.log, err = common.GetLogger(logdomain.Database); err != nil {
		return nil, err
	}

	for i := 0; i < cnt; i++ {
		var db *Database

		if db, err = Open(common.DbPath); err != nil {
			pool.log.Printf("[ERROR] Cannot open database connection #%d: %s\n",
				i+1,
				err.Error())
			return nil, err
		}

		pool.pool = append(pool.pool, db)
	}

	return pool, nil
} // func NewPool(cnt int) (*Pool, error)

// Get returns a connection from the Pool. If the Pool is empty, it
// blocks until a connection is returned via Put.
func (pool *Pool) Get() *Database {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	for len(pool.pool) == 0 {
		pool.cond.Wait()
	}

	var db = pool.pool[len(pool.pool)-1]
	pool.pool = pool.pool[:len(pool.pool)-1]

	return db
} // func (pool *Pool) Get() *Database

// GetNoWait returns a connection from the Pool. If the Pool is empty,
// a new connection is opened instead of waiting.
func (pool *Pool) GetNoWait() (*Database, error) {
	pool.lock.Lock()

	if len(pool.pool) > 0 {
		var db = pool.pool[len(pool.pool)-1]
		pool.pool = pool.pool[:len(pool.pool)-1]
		pool.lock.Unlock()
		return db, nil
	}

	pool.lock.Unlock()

	return Open(common.DbPath)
} // func (pool *Pool) GetNoWait() (*Database, error)

// IsEmpty returns true if the Pool currently has no idle connections.
func (pool *Pool) IsEmpty() bool {
	pool.lock.Lock()
	var empty = len(pool.pool) == 0
	pool.lock.Unlock()
	return empty
} // func (pool *Pool) IsEmpty() bool

// Put returns a connection to the Pool.
func (pool *Pool) Put(db *Database) {
	pool.lock.Lock()
	pool.pool = append(pool.pool, db)
	pool.cond.Signal()
	pool.lock.Unlock()
} // func (pool *Pool) Put(db *Database)

// Close closes all connections currently idle in the Pool.
func (pool *Pool) Close() error {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	var err error

	for _, db := range pool.pool {
		if err = db.Close(); err != nil {
			pool.log.Printf("[ERROR] Cannot close database connection: %s\n",
				err.Error())
			return err
		}
	}

	pool.pool = pool.pool[:0]

	return nil
} // func (pool *Pool) Close() error
