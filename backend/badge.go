// /home/krylon/go/src/github.com/blicero/asclepius/backend/badge.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-07 22:14:05 krylon>

package backend

import (
	"log"

	"github.com/blicero/asclepius/objects"
	"github.com/godbus/dbus/v5"
)

// The launcher badge is published the way Unity introduced it and most
// docks understand by now.
const (
	launcherPath dbus.ObjectPath = "/com/canonical/unity/launcherentry/1"
	launcherSig                  = "com.canonical.Unity.LauncherEntry.Update"
	launcherURI                  = "application://asclepius.desktop"
)

// badgeSurface mirrors the unread counter somewhere the donor can see
// it. It is strictly cosmetic, the database holds the authoritative
// count.
type badgeSurface interface {
	Publish(cnt int) error
}

type launcherBadge struct {
	bus *dbus.Conn
	log *log.Logger
}

func (b *launcherBadge) Publish(cnt int) error {
	return b.bus.Emit(
		launcherPath,
		launcherSig,
		launcherURI,
		map[string]dbus.Variant{
			"count":         dbus.MakeVariant(int64(cnt)),
			"count-visible": dbus.MakeVariant(cnt > 0),
		})
} // func (b *launcherBadge) Publish(cnt int) error

type nullBadge struct{}

func (b *nullBadge) Publish(cnt int) error { return nil }

// BadgeCount returns the current unread counter.
func (d *Daemon) BadgeCount() (int, error) {
	var db = d.pool.Get()
	defer d.pool.Put(db)

	return db.BadgeGet()
} // func (d *Daemon) BadgeCount() (int, error)

// BadgeIncrement adjusts the unread counter by delta, clamping at
// zero, and mirrors the new value to the launcher. A launcher that
// will not take it is not an error, the donor just does not get the
// little number.
func (d *Daemon) BadgeIncrement(delta int) (int, error) {
	var (
		err error
		cnt int
		db  = d.pool.Get()
	)
	defer d.pool.Put(db)

	if err = db.Begin(); err != nil {
		return 0, err
	} else if cnt, err = db.BadgeGet(); err != nil {
		db.Rollback() // nolint: errcheck
		return 0, err
	}

	cnt += delta
	if cnt < 0 {
		cnt = 0
	}

	if err = db.BadgeSet(cnt); err != nil {
		db.Rollback() // nolint: errcheck
		return 0, err
	} else if err = db.Commit(); err != nil {
		return 0, err
	}

	if err = d.launcher.Publish(cnt); err != nil {
		d.log.Printf("[DEBUG] Launcher did not take badge count: %s\n",
			err.Error())
	}

	d.noteEvent(func(ev *objects.EventFlags) { ev.BadgeChanged = true })

	return cnt, nil
} // func (d *Daemon) BadgeIncrement(delta int) (int, error)

// BadgeClear resets the unread counter to zero, e.g. when the donor
// has opened the app and seen what there is to see.
func (d *Daemon) BadgeClear() error {
	var (
		err error
		db  = d.pool.Get()
	)
	defer d.pool.Put(db)

	if err = db.BadgeSet(0); err != nil {
		return err
	}

	if err = d.launcher.Publish(0); err != nil {
		d.log.Printf("[DEBUG] Launcher did not take badge count: %s\n",
			err.Error())
	}

	d.noteEvent(func(ev *objects.EventFlags) { ev.BadgeChanged = true })

	return nil
} // func (d *Daemon) BadgeClear() error
