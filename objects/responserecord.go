// /home/krylon/go/src/github.com/blicero/asclepius/objects/responserecord.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-02 17:50:11 krylon>

package objects

import (
	"time"

	"github.com/blicero/asclepius/objects/action"
	"github.com/blicero/asclepius/objects/syncstatus"
)

//go:generate ffjson responserecord.go

// MaxSyncAttempts is the number of times a ResponseRecord is submitted
// to the collection server before it is left for manual attention.
const MaxSyncAttempts = 5

// ResponseRecord is a donor's reaction to a delivered
// NotificationRequest. It is written to the local log first and only
// removed after the collection server has acknowledged it.
type ResponseRecord struct {
	ID          int64
	UUID        string
	RequestUUID string
	Donor       string
	Action      action.Action
	Reason      string
	Timestamp   time.Time
	SyncStatus  syncstatus.Status
	Attempts    int
	LastError   string
}

// Abandoned returns true if the record has used up its sync attempts
// without being acknowledged.
func (r *ResponseRecord) Abandoned() bool {
	return r.SyncStatus != syncstatus.Synced && r.Attempts >= MaxSyncAttempts
} // func (r *ResponseRecord) Abandoned() bool
