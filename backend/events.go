// /home/krylon/go/src/github.com/blicero/asclepius/backend/events.go
// -*- mode: go; coding: utf-8; -*-
// Created on 15. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-06 20:41:58 krylon>

package backend

import "github.com/blicero/asclepius/objects"

// Clients poll for events rather than holding a connection open. Flags
// coalesce between polls: however many entries arrived since the last
// fetch, the client sees QueueDepthChanged once and looks at the depth.

func (d *Daemon) noteEvent(mod func(*objects.EventFlags)) {
	d.evtLock.Lock()
	mod(&d.events)
	d.evtLock.Unlock()
} // func (d *Daemon) noteEvent(mod func(*objects.EventFlags))

// EventsFetch returns the flags accumulated since the previous call
// and clears them, along with a fresh snapshot of the queue depth and
// the badge counter.
func (d *Daemon) EventsFetch() (objects.EventFlags, error) {
	d.evtLock.Lock()
	var ev = d.events
	d.events = objects.EventFlags{}
	d.evtLock.Unlock()

	var (
		err error
		st  *objects.QueueStatus
		db  = d.pool.Get()
	)
	defer d.pool.Put(db)

	if st, err = db.NotificationPeekStatus(); err != nil {
		return ev, err
	} else if ev.Badge, err = db.BadgeGet(); err != nil {
		return ev, err
	}

	ev.Depth = st.Depth

	return ev, nil
} // func (d *Daemon) EventsFetch() (objects.EventFlags, error)
