// /home/krylon/go/src/github.com/blicero/asclepius/backend/delivery.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-07 22:02:31 krylon>

package backend

import (
	"fmt"
	"log"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/priority"
	"github.com/blicero/asclepius/objects/tier"
	"github.com/godbus/dbus/v5"
)

const (
	notifyObj    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
	capMethod    = "org.freedesktop.Notifications.GetCapabilities"
)

// Urgency levels as defined by the desktop notification spec.
const (
	urgencyLow      byte = 0
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// notifySurface is whatever facility ends up putting a notification in
// front of the donor.
type notifySurface interface {
	Post(n *objects.NotificationRequest, t tier.Tier) error
}

// dbusSurface posts notifications on the desktop via the session bus.
type dbusSurface struct {
	bus *dbus.Conn
	log *log.Logger
}

func (s *dbusSurface) Post(n *objects.NotificationRequest, t tier.Tier) error {
	var (
		err        error
		obj        = s.bus.Object(notifyObj, notifyPath)
		head, body = n.Payload()
		urgency    = urgencyLow
		timeout    int32 = -1
	)

	if obj == nil {
		err = fmt.Errorf("Did not find object %s (%s) on session bus",
			notifyObj,
			notifyPath)
		s.log.Printf("[ERROR] %s\n", err.Error())
		return err
	}

	switch t {
	case tier.Critical:
		urgency = urgencyCritical
		timeout = 0 // stays up until the donor reacts
	case tier.Urgent:
		urgency = urgencyNormal
	}

	var res = obj.Call(
		notifyMethod,
		0,
		common.AppName,
		uint32(0),
		n.Icon,
		head,
		body,
		[]string{},
		map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(urgency),
		},
		timeout,
	)

	if res.Err != nil {
		s.log.Printf("[ERROR] Cannot send Notification %q: %s\n",
			head,
			res.Err.Error())
		return res.Err
	}

	return nil
} // func (s *dbusSurface) Post(n *objects.NotificationRequest, t tier.Tier) error

// pollSurface is the fallback on restricted platforms with no session
// bus: the entry counts as delivered the moment it is claimed, clients
// learn about it by polling.
type pollSurface struct {
	log *log.Logger
}

func (s *pollSurface) Post(n *objects.NotificationRequest, t tier.Tier) error {
	var head, _ = n.Payload()
	s.log.Printf("[INFO] In-app delivery (%s): %s\n",
		t,
		head)
	return nil
} // func (s *pollSurface) Post(n *objects.NotificationRequest, t tier.Tier) error

// tierFor maps a request's priority to the delivery tier the platform
// can actually provide.
func (d *Daemon) tierFor(n *objects.NotificationRequest) tier.Tier {
	switch n.Priority {
	case priority.Critical:
		if d.Capabilities().CriticalAlerts {
			return tier.Critical
		}
		// The donor still gets the banner, just without the
		// stays-on-screen treatment.
		d.log.Printf("[INFO] Critical alerts are unavailable, delivering %q as urgent\n",
			n.Tag)
		return tier.Urgent
	case priority.Urgent:
		return tier.Urgent
	default:
		return tier.Standard
	}
} // func (d *Daemon) tierFor(n *objects.NotificationRequest) tier.Tier

// ProcessNext claims the head of the queue and hands it to the
// notification surface. It returns nil if the queue is empty or
// delivery is currently left to a foreground client.
//
// Delivery is strictly one entry at a time; a failed handoff expires
// the entry rather than requeueing it, so a broken surface cannot
// make the same banner pop up over and over.
func (d *Daemon) ProcessNext() (*objects.NotificationRequest, error) {
	d.delLock.Lock()
	defer d.delLock.Unlock()

	var (
		err error
		n   *objects.NotificationRequest
		db  = d.pool.Get()
	)
	defer d.pool.Put(db)

	if d.isForeground() {
		// The client renders the queue itself, only the critical
		// tier goes through the OS regardless.
		if n, err = db.NotificationGetNext(); err != nil {
			return nil, err
		} else if n == nil || n.Priority != priority.Critical {
			return nil, nil
		}
	}

	if n, err = db.NotificationDequeue(); err != nil {
		return nil, err
	} else if n == nil {
		return nil, nil
	}

	if err = d.surface.Post(n, d.tierFor(n)); err != nil {
		d.log.Printf("[ERROR] Failed to hand Notification %q to the surface: %s\n",
			n.Tag,
			err.Error())

		var reason = fmt.Sprintf("delivery failed: %s", err.Error())
		if _, err2 := db.NotificationExpire(n.ID, reason); err2 != nil {
			d.log.Printf("[ERROR] Cannot expire Notification %q: %s\n",
				n.Tag,
				err2.Error())
		}

		d.noteEvent(func(ev *objects.EventFlags) {
			ev.DeliveryFailed = true
			ev.QueueDepthChanged = true
		})

		return nil, err
	}

	if _, err = db.NotificationMarkDelivered(n); err != nil {
		d.log.Printf("[ERROR] Cannot record delivery of Notification %q: %s\n",
			n.Tag,
			err.Error())
	}

	if n.RequiresResponse {
		if _, err = d.BadgeIncrement(1); err != nil {
			d.log.Printf("[ERROR] Cannot bump badge counter: %s\n",
				err.Error())
		}
	}

	d.noteEvent(func(ev *objects.EventFlags) { ev.QueueDepthChanged = true })

	return n, nil
} // func (d *Daemon) ProcessNext() (*objects.NotificationRequest, error)
