// /home/krylon/go/src/github.com/blicero/asclepius/backend/05_foreground_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-08 20:41:33 krylon>

package backend

import (
	"testing"
	"time"

	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/action"
	"github.com/blicero/asclepius/objects/syncstatus"
)

// When a client comes back to the foreground, the donor has seen what
// there was to see: the badge resets, and responses recorded while the
// app was away get pushed right away instead of on the next timer
// tick.
func TestForegroundTransition(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	back.SetForeground(false)

	var (
		err error
		cnt int
		db  = back.pool.Get()
		rec = &objects.ResponseRecord{
			Donor:  "donor/erika",
			Action: action.Decline,
			Reason: "recently donated",
		}
	)
	defer back.pool.Put(db)

	if err = back.RecordResponse(rec); err != nil {
		t.Fatalf("Cannot record Response: %s", err.Error())
	} else if _, err = back.BadgeIncrement(3); err != nil {
		t.Fatalf("Cannot raise badge: %s", err.Error())
	}

	back.SetForeground(true)
	defer back.SetForeground(false)

	if cnt, err = back.BadgeCount(); err != nil {
		t.Fatalf("Cannot read badge: %s", err.Error())
	} else if cnt != 0 {
		t.Errorf("Badge is %d after the app came to the foreground (expected 0)",
			cnt)
	}

	var synced = func() bool {
		var fresh, e = db.ResponseGetByID(rec.ID)
		return e == nil && fresh != nil && fresh.SyncStatus == syncstatus.Synced
	}

	if !waitUntil(time.Second*10, synced) {
		t.Error("Pending Response was not synced when the app came to the foreground")
	}
} // func TestForegroundTransition(t *testing.T)
