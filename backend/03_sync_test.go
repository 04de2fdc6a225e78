// /home/krylon/go/src/github.com/blicero/asclepius/backend/03_sync_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 20. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-08 19:40:15 krylon>

package backend

import (
	"testing"
	"time"

	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/action"
	"github.com/blicero/asclepius/objects/syncstatus"
)

var syncResponses = []*objects.ResponseRecord{
	{Donor: "donor/anna", Action: action.Accept},
	{Donor: "donor/bernd", Action: action.Decline, Reason: "traveling"},
	{Donor: "donor/clara", Action: action.Share},
}

func TestSyncRecord(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	for _, r := range syncResponses {
		var err error

		if err = back.RecordResponse(r); err != nil {
			t.Fatalf("Cannot record Response by %s: %s",
				r.Donor,
				err.Error())
		} else if r.ID == 0 {
			t.Errorf("Response by %s has no ID", r.Donor)
		}
	}
} // func TestSyncRecord(t *testing.T)

// One rejected record costs itself an attempt and nothing else, the
// rest of the batch goes through.
func TestSyncPartialFailure(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	submitter.lock.Lock()
	submitter.reject["donor/bernd"] = true
	submitter.lock.Unlock()

	var (
		err error
		res *objects.SyncResult
	)

	if res, err = back.SyncPending(); err != nil {
		t.Fatalf("Sync run failed: %s", err.Error())
	} else if res.InFlight {
		t.Fatal("Sync run reported as in flight")
	} else if len(res.Synced) != 4 {
		// anna, clara, and the two responses recorded while testing
		// delivery.
		t.Errorf("Unexpected number of synced Responses: %d (expected 4)",
			len(res.Synced))
	} else if len(res.Failed) != 1 {
		t.Errorf("Unexpected number of failed Responses: %d (expected 1)",
			len(res.Failed))
	}

	var (
		db   = back.pool.Get()
		fail *objects.ResponseRecord
	)
	defer back.pool.Put(db)

	if fail, err = db.ResponseGetByID(syncResponses[1].ID); err != nil {
		t.Fatalf("Cannot look up Response #%d: %s",
			syncResponses[1].ID,
			err.Error())
	} else if fail == nil {
		t.Fatal("Failed Response has vanished from the log")
	} else if fail.SyncStatus != syncstatus.Failed {
		t.Errorf("Failed Response is in state %s (expected %s)",
			fail.SyncStatus,
			syncstatus.Failed)
	} else if fail.Attempts != 1 {
		t.Errorf("Failed Response has %d attempts (expected 1)",
			fail.Attempts)
	} else if fail.LastError == "" {
		t.Error("Failed Response carries no error message")
	}
} // func TestSyncPartialFailure(t *testing.T)

// Each run against the broken server costs the record one more
// attempt. Once the server behaves again, the leftover record goes
// through, keeping its attempt bookkeeping.
func TestSyncRetry(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		err error
		res *objects.SyncResult
		rec *objects.ResponseRecord
		db  = back.pool.Get()
	)
	defer back.pool.Put(db)

	// The server is still rejecting bernd's record, so a second run
	// fails it a second time.
	if res, err = back.SyncPending(); err != nil {
		t.Fatalf("Sync run failed: %s", err.Error())
	} else if len(res.Failed) != 1 {
		t.Fatalf("Unexpected number of failed Responses: %d (expected 1)",
			len(res.Failed))
	} else if rec, err = db.ResponseGetByID(syncResponses[1].ID); err != nil {
		t.Fatalf("Cannot look up Response #%d: %s",
			syncResponses[1].ID,
			err.Error())
	} else if rec.Attempts != 2 {
		t.Errorf("Response has %d attempts after two failed runs (expected 2)",
			rec.Attempts)
	}

	submitter.lock.Lock()
	delete(submitter.reject, "donor/bernd")
	submitter.lock.Unlock()

	if res, err = back.SyncPending(); err != nil {
		t.Fatalf("Sync run failed: %s", err.Error())
	} else if len(res.Synced) != 1 {
		t.Fatalf("Unexpected number of synced Responses: %d (expected 1)",
			len(res.Synced))
	} else if res.Synced[0] != syncResponses[1].ID {
		t.Errorf("Synced Response #%d (expected #%d)",
			res.Synced[0],
			syncResponses[1].ID)
	} else if rec, err = db.ResponseGetByID(syncResponses[1].ID); err != nil {
		t.Fatalf("Cannot look up Response #%d: %s",
			syncResponses[1].ID,
			err.Error())
	} else if rec.SyncStatus != syncstatus.Synced {
		t.Errorf("Response is in state %s (expected %s)",
			rec.SyncStatus,
			syncstatus.Synced)
	} else if rec.Attempts != 2 {
		t.Errorf("Response has %d attempts (expected 2)",
			rec.Attempts)
	}
} // func TestSyncRetry(t *testing.T)

// Two concurrent sync triggers must result in one batch; the second
// caller waits for the run already in flight and gets its result.
func TestSyncInFlight(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var extra = &objects.ResponseRecord{
		Donor:  "donor/dirk",
		Action: action.Call,
	}

	var err error

	if err = back.RecordResponse(extra); err != nil {
		t.Fatalf("Cannot record Response: %s", err.Error())
	}

	var (
		gate    = make(chan struct{})
		started = make(chan string, 4)
		first   = make(chan *objects.SyncResult, 1)
		second  = make(chan *objects.SyncResult, 1)
	)

	submitter.lock.Lock()
	submitter.gate = gate
	submitter.started = started
	submitter.lock.Unlock()

	defer func() {
		submitter.lock.Lock()
		submitter.gate = nil
		submitter.started = nil
		submitter.lock.Unlock()
	}()

	go func() {
		var res, _ = back.SyncPending()
		first <- res
	}()

	select {
	case <-started:
		// first submission is underway and blocked on the gate
	case <-time.After(time.Second * 5):
		t.Fatal("Sync run never started submitting")
	}

	go func() {
		var res, _ = back.SyncPending()
		second <- res
	}()

	// Give the second caller a moment to park before the batch is
	// allowed to finish.
	time.Sleep(time.Millisecond * 250)
	close(gate)

	var res *objects.SyncResult

	select {
	case res = <-first:
		if res == nil {
			t.Fatal("Blocked sync run returned no result")
		} else if res.InFlight {
			t.Error("The run that did the work claims to have joined another")
		} else if len(res.Synced) != 1 || res.Synced[0] != extra.ID {
			t.Errorf("Blocked sync run synced %v (expected [%d])",
				res.Synced,
				extra.ID)
		}
	case <-time.After(time.Second * 5):
		t.Fatal("Blocked sync run never finished")
	}

	select {
	case res = <-second:
		if res == nil {
			t.Fatal("Concurrent sync trigger returned no result")
		} else if !res.InFlight {
			t.Error("Concurrent sync trigger was not told a sync was in flight")
		} else if len(res.Synced) != 1 || res.Synced[0] != extra.ID {
			t.Errorf("Concurrent sync trigger got result %v (expected [%d])",
				res.Synced,
				extra.ID)
		}
	case <-time.After(time.Second * 5):
		t.Fatal("Concurrent sync trigger never returned")
	}
} // func TestSyncInFlight(t *testing.T)
