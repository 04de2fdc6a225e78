// /home/krylon/go/src/github.com/blicero/asclepius/objects/queuestatus.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-02 17:52:19 krylon>

package objects

import "github.com/blicero/asclepius/objects/priority"

//go:generate ffjson queuestatus.go

// QueueStatus is a read-only snapshot of the pending queue.
type QueueStatus struct {
	Depth      int
	ByPriority map[priority.Priority]int
}

// SyncResult describes the outcome of one synchronization batch.
// InFlight is true if the caller received the result of a batch that
// was already running when it asked.
type SyncResult struct {
	Synced    []int64
	Failed    []int64
	Abandoned []int64
	InFlight  bool
}

// EventFlags is the coalesced set of state changes since the last time
// an observer asked. At most one flag is raised per logical state
// change, no matter how many changes occurred in between.
type EventFlags struct {
	QueueDepthChanged bool
	BadgeChanged      bool
	ResponsesSynced   bool
	DeliveryFailed    bool
	Depth             int
	Badge             int
}
