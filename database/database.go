// /home/krylon/go/src/github.com/blicero/asclepius/database/database.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-08 20:55:41 krylon>

// Package database provides the persistence layer of the backend.
// All local state that must survive a crash or restart lives here:
// the notification queue, the response log, and the badge counter.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/database/query"
	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/action"
	"github.com/blicero/asclepius/objects/priority"
	"github.com/blicero/asclepius/objects/status"
	"github.com/blicero/asclepius/objects/syncstatus"
	"github.com/blicero/krylib"
	_ "github.com/mattn/go-sqlite3" // Import the database driver
	"github.com/pquerna/ffjson/ffjson"
)

var (
	openLock sync.Mutex
	idCnt    int64
)

// ErrTxInProgress indicates that an attempt to initiate a transaction
// failed because there is already one in progress.
var ErrTxInProgress = errors.New("a Transaction is already in progress")

// ErrNoTxInProgress indicates that an attempt was made to finish a
// transaction when none was active.
var ErrNoTxInProgress = errors.New("there is no transaction in progress")

// If a query returns an error and the error text is matched by this
// regex, we consider the error as transient and try again after a
// short delay.
var retryPat = regexp.MustCompile("(?i)database is (?:locked|busy)")

// worthARetry returns true if an error returned from the database
// is matched by the retryPat regex.
func worthARetry(e error) bool {
	return retryPat.MatchString(e.Error())
} // func worthARetry(e error) bool

// retryDelay is the amount of time we wait before we repeat a failed
// database operation.
const retryDelay = 25 * time.Millisecond

func waitForRetry() {
	time.Sleep(retryDelay + time.Duration(rand.Intn(25))*time.Millisecond)
} // func waitForRetry()

// Database is the storage backend for managing the notification queue,
// the response log, and the badge counter.
//
// It is not safe to share a Database instance between goroutines,
// however opening multiple connections to the same database is
// perfectly safe: use a Pool for that.
type Database struct {
	id      int64
	db      *sql.DB
	tx      *sql.Tx
	log     *log.Logger
	path    string
	queries map[query.ID]*sql.Stmt
}

// Open opens a Database. If the database specified by the path does not
// exist, yet, it is created and initialized.
func Open(path string) (*Database, error) {
	var (
		err      error
		dbExists bool
		db       = &Database{
			path:    path,
			queries: make(map[query.ID]*sql.Stmt),
		}
	)

	openLock.Lock()
	defer openLock.Unlock()
	idCnt++
	db.id = idCnt

	if db.log, err = common.GetLogger(logdomain.Database); err != nil {
		return nil, err
	}

	var connstring = fmt.Sprintf("%s?_locking=NORMAL&_journal=WAL&_fk=1&recursive_triggers=0",
		path)

	if dbExists, err = krylib.Fexists(path); err != nil {
		db.log.Printf("[ERROR] Failed to check if %s exists: %s\n",
			path,
			err.Error())
		return nil, err
	} else if db.db, err = sql.Open("sqlite3", connstring); err != nil {
		db.log.Printf("[ERROR] Failed to open %s: %s\n",
			path,
			err.Error())
		return nil, err
	}

	db.db.SetMaxOpenConns(1)

	if !dbExists {
		if err = db.initialize(); err != nil {
			var err2 error
			if err2 = db.db.Close(); err2 != nil {
				db.log.Printf("[CRITICAL] Failed to close database: %s\n",
					err2.Error())
				return nil, err2
			} else if err2 = os.Remove(path); err2 != nil {
				db.log.Printf("[CRITICAL] Failed to remove database file %s: %s\n",
					db.path,
					err2.Error())
			}
			return nil, err
		}
		db.log.Printf("[INFO] Database at %s has been initialized\n",
			path)
	}

	return db, nil
} // func Open(path string) (*Database, error)

func (db *Database) initialize() error {
	var err error
	var tx *sql.Tx

	if tx, err = db.db.Begin(); err != nil {
		db.log.Printf("[ERROR] Cannot begin transaction: %s\n",
			err.Error())
		return err
	}

	for _, q := range initQueries {
		db.log.Printf("[TRACE] Execute init query:\n%s\n",
			q)
		if _, err = tx.Exec(q); err != nil {
			db.log.Printf("[ERROR] Cannot execute init query: %s\n%s\n",
				err.Error(),
				q)
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.Printf("[CANTHAPPEN] Cannot rollback transaction: %s\n",
					rbErr.Error())
				return rbErr
			}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		db.log.Printf("[CANTHAPPEN] Failed to commit transaction: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) initialize() error

// Close closes the database.
// If there is a pending transaction, it is rolled back.
func (db *Database) Close() error {
	// I wonder if would make more snese to panic() if something goes
	// wrong, so that suspicious activity does not go unnoticed.
	var err error

	if db.tx != nil {
		if err = db.tx.Rollback(); err != nil {
			db.log.Printf("[CRITICAL] Cannot roll back pending transaction: %s\n",
				err.Error())
			return err
		}
		db.tx = nil
	}

	for key, stmt := range db.queries {
		if err = stmt.Close(); err != nil {
			db.log.Printf("[CRITICAL] Cannot close statement handle %s: %s\n",
				key,
				err.Error())
			return err
		}
		delete(db.queries, key)
	}

	if err = db.db.Close(); err != nil {
		db.log.Printf("[CRITICAL] Cannot close database: %s\n",
			err.Error())
	}

	db.db = nil
	return nil
} // func (db *Database) Close() error

func (db *Database) getQuery(id query.ID) (*sql.Stmt, error) {
	var (
		stmt  *sql.Stmt
		found bool
		err   error
	)

	if stmt, found = db.queries[id]; found {
		return stmt, nil
	} else if _, found = dbQueries[id]; !found {
		return nil, fmt.Errorf("Unknown query %d",
			id)
	}

PREPARE_QUERY:
	if stmt, err = db.db.Prepare(dbQueries[id]); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto PREPARE_QUERY
		}

		db.log.Printf("[ERROR] Cannot parse query %s: %s\n%s\n",
			id,
			err.Error(),
			dbQueries[id])
		return nil, err
	}

	db.queries[id] = stmt

	return stmt, nil
} // func (db *Database) getQuery(query.ID) (*sql.Stmt, error)

// Begin begins an explicit transaction.
// Only one transaction can be in progress at once, attempting to start
// one, while another transaction is already in progress will yield
// ErrTxInProgress.
func (db *Database) Begin() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Begin Transaction\n",
		db.id)

	if db.tx != nil {
		return ErrTxInProgress
	}

BEGIN_TX:
	for db.tx == nil {
		if db.tx, err = db.db.Begin(); err != nil {
			if worthARetry(err) {
				waitForRetry()
				continue BEGIN_TX
			}
			db.log.Printf("[ERROR] Failed to start transaction: %s\n",
				err.Error())
			return err
		}
	}

	return nil
} // func (db *Database) Begin() error

// Rollback terminates a pending transaction, undoing any changes to the
// database made during that transaction.
// If no transaction is active, it returns ErrNoTxInProgress.
func (db *Database) Rollback() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Roll back Transaction\n",
		db.id)

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Rollback(); err != nil {
		return fmt.Errorf("Cannot roll back database transaction: %w",
			err)
	}

	db.tx = nil

	return nil
} // func (db *Database) Rollback() error

// Commit ends the active transaction, making any changes made during
// that transaction permanent and visible to other connections.
// If no transaction is active, it returns ErrNoTxInProgress.
func (db *Database) Commit() error {
	var err error

	db.log.Printf("[DEBUG] Database#%d Commit Transaction\n",
		db.id)

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Commit(); err != nil {
		return fmt.Errorf("Cannot commit transaction: %w",
			err)
	}

	db.tx = nil

	return nil
} // func (db *Database) Commit() error

////////////////////////////////////////////////////////////////////////////////
//// Notification queue ////////////////////////////////////////////////////////
////////////////////////////////////////////////////////////////////////////////

// NotificationEnqueue adds a NotificationRequest to the queue. If a
// live entry with the same Tag exists, the new request supersedes it
// instead of being queued alongside it: a Queued entry is overwritten
// in place (keeping its spot in the FIFO order), a Delivered entry is
// expired and the new request queued fresh.
func (db *Database) NotificationEnqueue(n *objects.NotificationRequest) error {
	var (
		err      error
		old      *objects.NotificationRequest
		txStatus bool
	)

	if err = n.Validate(); err != nil {
		return err
	}

	if !n.Priority.Valid() {
		n.Priority = priority.Normal
	}

	if n.UUID == "" {
		n.UUID = common.GetUUID()
	}

	var now = time.Now()
	if n.Timestamp.IsZero() {
		n.Timestamp = now
	}
	n.Changed = now

	if db.tx == nil {
		if err = db.Begin(); err != nil {
			return err
		}

		defer func() {
			if txStatus {
				db.Commit() // nolint: errcheck
			} else {
				db.Rollback() // nolint: errcheck
			}
		}()
	} else {
		// Caller owns the transaction, caller finishes it.
		txStatus = true // nolint: ineffassign,staticcheck
	}

	if old, err = db.NotificationGetByTag(n.Tag); err != nil {
		return err
	} else if old != nil && old.Status == status.Queued {
		n.ID = old.ID
		n.UUID = old.UUID
		n.Timestamp = old.Timestamp
		if err = db.notificationUpdatePayload(n); err != nil {
			return err
		}
		txStatus = true
		return nil
	} else if old != nil {
		// A Delivered entry cannot be overwritten in place, the OS
		// notification is already out. Expire it, queue the new one.
		if _, err = db.NotificationExpire(old.ID, "superseded"); err != nil {
			return err
		}
	}

	if err = db.notificationAdd(n); err != nil {
		return err
	}

	txStatus = true
	return nil
} // func (db *Database) NotificationEnqueue(n *objects.NotificationRequest) error

func (db *Database) notificationAdd(n *objects.NotificationRequest) error {
	const qid query.ID = query.NotificationAdd
	var (
		err  error
		msg  string
		data []byte
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if data, err = ffjson.Marshal(n.Data); err != nil {
		db.log.Printf("[ERROR] Cannot serialize payload of Notification %q: %s\n",
			n.Tag,
			err.Error())
		return err
	}

	stmt = db.tx.Stmt(stmt)

	var res sql.Result

EXEC_QUERY:
	if res, err = stmt.Exec(
		n.UUID,
		n.Tag,
		n.Priority,
		n.Title,
		n.Body,
		n.Icon,
		string(data),
		n.RequiresResponse,
		n.Timestamp.Unix(),
		n.Changed.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		msg = fmt.Sprintf("Cannot add Notification %q to queue: %s",
			n.Tag,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	if n.ID, err = res.LastInsertId(); err != nil {
		msg = fmt.Sprintf("Cannot get ID of new Notification %q: %s",
			n.Tag,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	n.Status = status.Queued

	return nil
} // func (db *Database) notificationAdd(n *objects.NotificationRequest) error

func (db *Database) notificationUpdatePayload(n *objects.NotificationRequest) error {
	const qid query.ID = query.NotificationUpdatePayload
	var (
		err  error
		data []byte
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if data, err = ffjson.Marshal(n.Data); err != nil {
		db.log.Printf("[ERROR] Cannot serialize payload of Notification %q: %s\n",
			n.Tag,
			err.Error())
		return err
	}

	stmt = db.tx.Stmt(stmt)

EXEC_QUERY:
	if _, err = stmt.Exec(
		n.Priority,
		n.Title,
		n.Body,
		n.Icon,
		string(data),
		n.RequiresResponse,
		n.Changed.Unix(),
		n.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot supersede Notification %q (%d): %s\n",
			n.Tag,
			n.ID,
			err.Error())
		return err
	}

	n.Status = status.Queued

	return nil
} // func (db *Database) notificationUpdatePayload(n *objects.NotificationRequest) error

// NotificationGetByTag looks up the live (Queued or Delivered) entry
// for the given tag. It returns nil if there is none.
func (db *Database) NotificationGetByTag(tag string) (*objects.NotificationRequest, error) {
	const qid query.ID = query.NotificationGetByTag
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(tag); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot look up Notification by tag %q: %s\n",
			tag,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			n                           = &objects.NotificationRequest{Tag: tag}
			created, delivered, changed int64
			needReply                   int64
			data                        string
		)

		if err = rows.Scan(
			&n.ID,
			&n.UUID,
			&n.Priority,
			&n.Title,
			&n.Body,
			&n.Icon,
			&data,
			&needReply,
			&n.Status,
			&n.Reason,
			&created,
			&delivered,
			&changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		n.RequiresResponse = needReply != 0
		n.Timestamp = time.Unix(created, 0)
		n.Delivered = time.Unix(delivered, 0)
		n.Changed = time.Unix(changed, 0)

		if err = ffjson.Unmarshal([]byte(data), &n.Data); err != nil {
			db.log.Printf("[ERROR] Cannot parse payload of Notification %q: %s\n",
				tag,
				err.Error())
			return nil, err
		}

		return n, nil
	}

	return nil, nil
} // func (db *Database) NotificationGetByTag(tag string) (*objects.NotificationRequest, error)

// NotificationGetByID loads one NotificationRequest by its database ID.
func (db *Database) NotificationGetByID(id int64) (*objects.NotificationRequest, error) {
	const qid query.ID = query.NotificationGetByID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot look up Notification #%d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			n                           = &objects.NotificationRequest{ID: id}
			created, delivered, changed int64
			needReply                   int64
			data                        string
		)

		if err = rows.Scan(
			&n.UUID,
			&n.Tag,
			&n.Priority,
			&n.Title,
			&n.Body,
			&n.Icon,
			&data,
			&needReply,
			&n.Status,
			&n.Reason,
			&created,
			&delivered,
			&changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		n.RequiresResponse = needReply != 0
		n.Timestamp = time.Unix(created, 0)
		n.Delivered = time.Unix(delivered, 0)
		n.Changed = time.Unix(changed, 0)

		if err = ffjson.Unmarshal([]byte(data), &n.Data); err != nil {
			db.log.Printf("[ERROR] Cannot parse payload of Notification #%d: %s\n",
				id,
				err.Error())
			return nil, err
		}

		return n, nil
	}

	return nil, nil
} // func (db *Database) NotificationGetByID(id int64) (*objects.NotificationRequest, error)

// NotificationGetByUUID loads one NotificationRequest by its UUID.
func (db *Database) NotificationGetByUUID(uu string) (*objects.NotificationRequest, error) {
	const qid query.ID = query.NotificationGetByUUID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(uu); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot look up Notification %s: %s\n",
			uu,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			n                           = &objects.NotificationRequest{UUID: uu}
			created, delivered, changed int64
			needReply                   int64
			data                        string
		)

		if err = rows.Scan(
			&n.ID,
			&n.Tag,
			&n.Priority,
			&n.Title,
			&n.Body,
			&n.Icon,
			&data,
			&needReply,
			&n.Status,
			&n.Reason,
			&created,
			&delivered,
			&changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		n.RequiresResponse = needReply != 0
		n.Timestamp = time.Unix(created, 0)
		n.Delivered = time.Unix(delivered, 0)
		n.Changed = time.Unix(changed, 0)

		if err = ffjson.Unmarshal([]byte(data), &n.Data); err != nil {
			db.log.Printf("[ERROR] Cannot parse payload of Notification %s: %s\n",
				uu,
				err.Error())
			return nil, err
		}

		return n, nil
	}

	return nil, nil
} // func (db *Database) NotificationGetByUUID(uu string) (*objects.NotificationRequest, error)

// NotificationGetNext returns the Queued entry with the lowest priority
// number, oldest first within the same priority. It does not mutate
// anything; use NotificationDequeue to claim the entry.
func (db *Database) NotificationGetNext() (*objects.NotificationRequest, error) {
	const qid query.ID = query.NotificationGetNext
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query head of queue: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			n                           = &objects.NotificationRequest{Status: status.Queued}
			created, delivered, changed int64
			needReply                   int64
			data                        string
		)

		if err = rows.Scan(
			&n.ID,
			&n.UUID,
			&n.Tag,
			&n.Priority,
			&n.Title,
			&n.Body,
			&n.Icon,
			&data,
			&needReply,
			&n.Reason,
			&created,
			&delivered,
			&changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		n.RequiresResponse = needReply != 0
		n.Timestamp = time.Unix(created, 0)
		n.Delivered = time.Unix(delivered, 0)
		n.Changed = time.Unix(changed, 0)

		if err = ffjson.Unmarshal([]byte(data), &n.Data); err != nil {
			db.log.Printf("[ERROR] Cannot parse payload of Notification %q: %s\n",
				n.Tag,
				err.Error())
			return nil, err
		}

		return n, nil
	}

	return nil, nil
} // func (db *Database) NotificationGetNext() (*objects.NotificationRequest, error)

// NotificationDequeue atomically claims the head of the queue: the
// returned entry has left the Queued state before the caller ever sees
// it, so no second consumer - and no restarted process - can deliver
// it again. It returns nil if the queue is empty.
func (db *Database) NotificationDequeue() (*objects.NotificationRequest, error) {
	const qid query.ID = query.NotificationClaim
	var (
		err      error
		n        *objects.NotificationRequest
		stmt     *sql.Stmt
		txStatus bool
	)

	if db.tx == nil {
		if err = db.Begin(); err != nil {
			return nil, err
		}

		defer func() {
			if txStatus {
				db.Commit() // nolint: errcheck
			} else {
				db.Rollback() // nolint: errcheck
			}
		}()
	} else {
		txStatus = true // nolint: ineffassign,staticcheck
	}

	if n, err = db.NotificationGetNext(); err != nil {
		return nil, err
	} else if n == nil {
		txStatus = true
		return nil, nil
	}

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	}

	stmt = db.tx.Stmt(stmt)

	var (
		res sql.Result
		cnt int64
		now = time.Now()
	)

EXEC_QUERY:
	if res, err = stmt.Exec(now.Unix(), n.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot claim Notification #%d: %s\n",
			n.ID,
			err.Error())
		return nil, err
	} else if cnt, err = res.RowsAffected(); err != nil {
		db.log.Printf("[ERROR] Cannot get number of rows affected: %s\n",
			err.Error())
		return nil, err
	} else if cnt != 1 {
		db.log.Printf("[CANTHAPPEN] Claiming Notification #%d touched %d rows\n",
			n.ID,
			cnt)
		return nil, nil
	}

	n.Status = status.Delivered
	n.Changed = now

	txStatus = true
	return n, nil
} // func (db *Database) NotificationDequeue() (*objects.NotificationRequest, error)

// NotificationPeekStatus returns a read-only snapshot of the queue,
// the total depth plus a per-priority breakdown.
func (db *Database) NotificationPeekStatus() (*objects.QueueStatus, error) {
	const qid query.ID = query.NotificationQueueDepth
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query queue depth: %s\n",
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var st = &objects.QueueStatus{
		ByPriority: make(map[priority.Priority]int, 3),
	}

	for rows.Next() {
		var (
			prio priority.Priority
			cnt  int
		)

		if err = rows.Scan(&prio, &cnt); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		st.ByPriority[prio] = cnt
		st.Depth += cnt
	}

	return st, nil
} // func (db *Database) NotificationPeekStatus() (*objects.QueueStatus, error)

// NotificationMarkDelivered records the moment a claimed entry was
// actually handed to the notification surface. The bool result is
// false if no such entry was in the Delivered state.
func (db *Database) NotificationMarkDelivered(n *objects.NotificationRequest) (bool, error) {
	const qid query.ID = query.NotificationSetDelivered
	var (
		err  error
		stmt *sql.Stmt
		now  = time.Now()
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return false, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var (
		res sql.Result
		cnt int64
	)

EXEC_QUERY:
	if res, err = stmt.Exec(now.Unix(), now.Unix(), n.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot mark Notification #%d as delivered: %s\n",
			n.ID,
			err.Error())
		return false, err
	} else if cnt, err = res.RowsAffected(); err != nil {
		db.log.Printf("[ERROR] Cannot get number of rows affected: %s\n",
			err.Error())
		return false, err
	} else if cnt == 0 {
		db.log.Printf("[DEBUG] Notification #%d not found or not in Delivered state\n",
			n.ID)
		return false, nil
	}

	n.Delivered = now
	n.Changed = now

	return true, nil
} // func (db *Database) NotificationMarkDelivered(n *objects.NotificationRequest) (bool, error)

// NotificationMarkActioned transitions a Delivered entry to Actioned.
// An unknown or non-Delivered ID is a no-op, reported as false.
func (db *Database) NotificationMarkActioned(id int64) (bool, error) {
	const qid query.ID = query.NotificationSetActioned
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return false, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var (
		res sql.Result
		cnt int64
	)

EXEC_QUERY:
	if res, err = stmt.Exec(time.Now().Unix(), id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot mark Notification #%d as actioned: %s\n",
			id,
			err.Error())
		return false, err
	} else if cnt, err = res.RowsAffected(); err != nil {
		db.log.Printf("[ERROR] Cannot get number of rows affected: %s\n",
			err.Error())
		return false, err
	}

	return cnt != 0, nil
} // func (db *Database) NotificationMarkActioned(id int64) (bool, error)

// NotificationExpire transitions a live entry to Expired, recording the
// reason. An unknown or already-terminal ID is a no-op, reported as
// false.
func (db *Database) NotificationExpire(id int64, reason string) (bool, error) {
	const qid query.ID = query.NotificationExpire
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return false, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var (
		res sql.Result
		cnt int64
	)

EXEC_QUERY:
	if res, err = stmt.Exec(reason, time.Now().Unix(), id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot expire Notification #%d: %s\n",
			id,
			err.Error())
		return false, err
	} else if cnt, err = res.RowsAffected(); err != nil {
		db.log.Printf("[ERROR] Cannot get number of rows affected: %s\n",
			err.Error())
		return false, err
	}

	return cnt != 0, nil
} // func (db *Database) NotificationExpire(id int64, reason string) (bool, error)

// NotificationExpireStale expires all Queued entries that have been
// waiting longer than their priority permits, relative to ref.
func (db *Database) NotificationExpireStale(ref time.Time) (int64, error) {
	const qid query.ID = query.NotificationExpireStale
	var (
		err   error
		stmt  *sql.Stmt
		total int64
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return 0, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	for _, prio := range priority.AllPriorities() {
		var (
			res    sql.Result
			cnt    int64
			probe  = objects.NotificationRequest{Priority: prio}
			cutoff = ref.Add(-probe.StaleAfter())
		)

	EXEC_QUERY:
		if res, err = stmt.Exec(ref.Unix(), prio, cutoff.Unix()); err != nil {
			if worthARetry(err) {
				waitForRetry()
				goto EXEC_QUERY
			}

			db.log.Printf("[ERROR] Cannot expire stale %s Notifications: %s\n",
				prio,
				err.Error())
			return total, err
		} else if cnt, err = res.RowsAffected(); err != nil {
			db.log.Printf("[ERROR] Cannot get number of rows affected: %s\n",
				err.Error())
			return total, err
		}

		total += cnt
	}

	return total, nil
} // func (db *Database) NotificationExpireStale(ref time.Time) (int64, error)

// NotificationPurgeOld deletes terminal (Actioned or Expired) entries
// last touched before the cutoff.
func (db *Database) NotificationPurgeOld(cutoff time.Time) (int64, error) {
	const qid query.ID = query.NotificationPurgeOld
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return 0, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var (
		res sql.Result
		cnt int64
	)

EXEC_QUERY:
	if res, err = stmt.Exec(cutoff.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot purge old Notifications: %s\n",
			err.Error())
		return 0, err
	} else if cnt, err = res.RowsAffected(); err != nil {
		db.log.Printf("[ERROR] Cannot get number of rows affected: %s\n",
			err.Error())
		return 0, err
	}

	return cnt, nil
} // func (db *Database) NotificationPurgeOld(cutoff time.Time) (int64, error)

////////////////////////////////////////////////////////////////////////////////
//// Response log //////////////////////////////////////////////////////////////
////////////////////////////////////////////////////////////////////////////////

// ResponseAdd appends a donor's response to the local log. This must
// succeed without a network; it is the durable record the sync loop
// works off later.
func (db *Database) ResponseAdd(r *objects.ResponseRecord) error {
	const qid query.ID = query.ResponseAdd
	var (
		err  error
		msg  string
		stmt *sql.Stmt
	)

	if r.UUID == "" {
		r.UUID = common.GetUUID()
	}

	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var res sql.Result

EXEC_QUERY:
	if res, err = stmt.Exec(
		r.UUID,
		r.RequestUUID,
		r.Donor,
		r.Action,
		r.Reason,
		r.Timestamp.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		msg = fmt.Sprintf("Cannot add Response by %s to log: %s",
			r.Donor,
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	if r.ID, err = res.LastInsertId(); err != nil {
		msg = fmt.Sprintf("Cannot get ID of new Response: %s",
			err.Error())
		db.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	}

	r.SyncStatus = syncstatus.Pending

	return nil
} // func (db *Database) ResponseAdd(r *objects.ResponseRecord) error

// ResponseGetByID loads one ResponseRecord by its database ID.
func (db *Database) ResponseGetByID(id int64) (*objects.ResponseRecord, error) {
	const qid query.ID = query.ResponseGetByID
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(id); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot look up Response #%d: %s\n",
			id,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			r     = &objects.ResponseRecord{ID: id}
			stamp int64
			act   int64
		)

		if err = rows.Scan(
			&r.UUID,
			&r.RequestUUID,
			&r.Donor,
			&act,
			&r.Reason,
			&stamp,
			&r.SyncStatus,
			&r.Attempts,
			&r.LastError); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		r.Action = action.Action(act)
		r.Timestamp = time.Unix(stamp, 0)

		return r, nil
	}

	return nil, nil
} // func (db *Database) ResponseGetByID(id int64) (*objects.ResponseRecord, error)

func (db *Database) responseGetList(qid query.ID) ([]objects.ResponseRecord, error) {
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(objects.MaxSyncAttempts); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query Responses (%s): %s\n",
			qid,
			err.Error())
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var records []objects.ResponseRecord

	for rows.Next() {
		var (
			r     objects.ResponseRecord
			stamp int64
			act   int64
		)

		if err = rows.Scan(
			&r.ID,
			&r.UUID,
			&r.RequestUUID,
			&r.Donor,
			&act,
			&r.Reason,
			&stamp,
			&r.SyncStatus,
			&r.Attempts,
			&r.LastError); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return nil, err
		}

		r.Action = action.Action(act)
		r.Timestamp = time.Unix(stamp, 0)
		records = append(records, r)
	}

	return records, nil
} // func (db *Database) responseGetList(qid query.ID) ([]objects.ResponseRecord, error)

// ResponseGetPending returns the records still awaiting a successful
// sync, oldest first, excluding those that have used up their attempts.
func (db *Database) ResponseGetPending() ([]objects.ResponseRecord, error) {
	return db.responseGetList(query.ResponseGetPending)
} // func (db *Database) ResponseGetPending() ([]objects.ResponseRecord, error)

// ResponseGetAbandoned returns the records that have used up their sync
// attempts without being acknowledged. They are kept for manual
// attention, never retried automatically.
func (db *Database) ResponseGetAbandoned() ([]objects.ResponseRecord, error) {
	return db.responseGetList(query.ResponseGetAbandoned)
} // func (db *Database) ResponseGetAbandoned() ([]objects.ResponseRecord, error)

// ResponseMarkSynced records that the collection server has
// acknowledged the given record.
func (db *Database) ResponseMarkSynced(r *objects.ResponseRecord) error {
	const qid query.ID = query.ResponseMarkSynced
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(r.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot mark Response #%d as synced: %s\n",
			r.ID,
			err.Error())
		return err
	}

	r.SyncStatus = syncstatus.Synced
	r.LastError = ""

	return nil
} // func (db *Database) ResponseMarkSynced(r *objects.ResponseRecord) error

// ResponseMarkFailed records a failed submission attempt for the given
// record, incrementing its attempt counter.
func (db *Database) ResponseMarkFailed(r *objects.ResponseRecord, msg string) error {
	const qid query.ID = query.ResponseMarkFailed
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(msg, r.ID); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot mark Response #%d as failed: %s\n",
			r.ID,
			err.Error())
		return err
	}

	r.SyncStatus = syncstatus.Failed
	r.Attempts++
	r.LastError = msg

	return nil
} // func (db *Database) ResponseMarkFailed(r *objects.ResponseRecord, msg string) error

// ResponsePurgeSynced deletes acknowledged records older than the
// cutoff. Unacknowledged records are never deleted.
func (db *Database) ResponsePurgeSynced(cutoff time.Time) (int64, error) {
	const qid query.ID = query.ResponsePurgeSynced
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return 0, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var (
		res sql.Result
		cnt int64
	)

EXEC_QUERY:
	if res, err = stmt.Exec(cutoff.Unix()); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot purge synced Responses: %s\n",
			err.Error())
		return 0, err
	} else if cnt, err = res.RowsAffected(); err != nil {
		db.log.Printf("[ERROR] Cannot get number of rows affected: %s\n",
			err.Error())
		return 0, err
	}

	return cnt, nil
} // func (db *Database) ResponsePurgeSynced(cutoff time.Time) (int64, error)

////////////////////////////////////////////////////////////////////////////////
//// Badge counter /////////////////////////////////////////////////////////////
////////////////////////////////////////////////////////////////////////////////

// BadgeGet returns the persisted unread counter.
func (db *Database) BadgeGet() (int, error) {
	const qid query.ID = query.BadgeGet
	var (
		err  error
		stmt *sql.Stmt
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return 0, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

	var rows *sql.Rows

EXEC_QUERY:
	if rows, err = stmt.Query(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot query badge counter: %s\n",
			err.Error())
		return 0, err
	}

	defer rows.Close() // nolint: errcheck

	var cnt int

	if rows.Next() {
		if err = rows.Scan(&cnt); err != nil {
			db.log.Printf("[ERROR] Cannot scan row: %s\n",
				err.Error())
			return 0, err
		}
	}

	return cnt, nil
} // func (db *Database) BadgeGet() (int, error)

// BadgeSet stores the unread counter. Negative values are clamped to
// zero before they reach the database.
func (db *Database) BadgeSet(cnt int) error {
	const qid query.ID = query.BadgeSet
	var (
		err  error
		stmt *sql.Stmt
	)

	if cnt < 0 {
		cnt = 0
	}

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if _, err = stmt.Exec(cnt); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Cannot set badge counter to %d: %s\n",
			cnt,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) BadgeSet(cnt int) error
