// /home/krylon/go/src/github.com/blicero/asclepius/database/02_database_queue_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 08. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-05 14:48:36 krylon>

package database

import (
	"testing"
	"time"

	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/priority"
	"github.com/blicero/asclepius/objects/status"
)

var notifications = []*objects.NotificationRequest{
	{
		Tag:      "drive/2023-11-18",
		Priority: priority.Normal,
		Title:    "Blood drive on Saturday",
		Body:     "Community center, 09:00 to 16:00",
	},
	{
		Tag:              "request/o-neg/77",
		Priority:         priority.Critical,
		Title:            "O negative needed urgently",
		Body:             "St. Luke's is low on O negative",
		RequiresResponse: true,
		Data:             map[string]string{"hospital": "st-lukes", "blood_type": "O-"},
	},
	{
		Tag:              "appointment/4711",
		Priority:         priority.Urgent,
		Title:            "Donation appointment tomorrow",
		Body:             "09:45 at the donation center",
		RequiresResponse: true,
	},
	{
		Tag:      "eligibility/renewal",
		Priority: priority.Normal,
		Title:    "You are eligible to donate again",
	},
}

func TestNotificationEnqueue(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	for _, n := range notifications {
		var err error

		if err = db.NotificationEnqueue(n); err != nil {
			t.Fatalf("Cannot enqueue Notification %q: %s",
				n.Tag,
				err.Error())
		} else if n.ID == 0 {
			t.Errorf("ID of Notification %q is 0", n.Tag)
		} else if n.UUID == "" {
			t.Errorf("Notification %q was not assigned a UUID", n.Tag)
		}
	}
} // func TestNotificationEnqueue(t *testing.T)

func TestNotificationEnqueueInvalid(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err error
		bad = &objects.NotificationRequest{Body: "I have neither title nor tag"}
	)

	if err = db.NotificationEnqueue(bad); err == nil {
		t.Error("Enqueueing a Notification without Title and Tag should have failed")
	} else if _, ok := err.(*objects.InvalidRequestError); !ok {
		t.Errorf("Unexpected error type %T: %s",
			err,
			err.Error())
	}
} // func TestNotificationEnqueueInvalid(t *testing.T)

func TestNotificationQueueStatus(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err error
		st  *objects.QueueStatus
	)

	if st, err = db.NotificationPeekStatus(); err != nil {
		t.Fatalf("Cannot query queue status: %s",
			err.Error())
	} else if st.Depth != len(notifications) {
		t.Fatalf("Unexpected queue depth %d (expected %d)",
			st.Depth,
			len(notifications))
	} else if st.ByPriority[priority.Critical] != 1 {
		t.Errorf("Unexpected number of Critical entries: %d",
			st.ByPriority[priority.Critical])
	} else if st.ByPriority[priority.Normal] != 2 {
		t.Errorf("Unexpected number of Normal entries: %d",
			st.ByPriority[priority.Normal])
	}
} // func TestNotificationQueueStatus(t *testing.T)

// Queueing a second request with the tag of a live entry must replace
// that entry instead of adding to the queue.
func TestNotificationSupersede(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err   error
		oldID = notifications[2].ID
		st    *objects.QueueStatus
		n     *objects.NotificationRequest
		upd   = &objects.NotificationRequest{
			Tag:              "appointment/4711",
			Priority:         priority.Urgent,
			Title:            "Donation appointment tomorrow",
			Body:             "Moved to 10:30",
			RequiresResponse: true,
		}
	)

	if err = db.NotificationEnqueue(upd); err != nil {
		t.Fatalf("Cannot supersede Notification %q: %s",
			upd.Tag,
			err.Error())
	} else if upd.ID != oldID {
		t.Errorf("Superseding Notification %q changed its ID from %d to %d",
			upd.Tag,
			oldID,
			upd.ID)
	} else if st, err = db.NotificationPeekStatus(); err != nil {
		t.Fatalf("Cannot query queue status: %s",
			err.Error())
	} else if st.Depth != len(notifications) {
		t.Fatalf("Superseding a queued entry changed the queue depth to %d (expected %d)",
			st.Depth,
			len(notifications))
	} else if n, err = db.NotificationGetByTag(upd.Tag); err != nil {
		t.Fatalf("Cannot look up Notification %q: %s",
			upd.Tag,
			err.Error())
	} else if n == nil {
		t.Fatalf("No live Notification with tag %q was found", upd.Tag)
	} else if n.Body != "Moved to 10:30" {
		t.Errorf("Notification %q carries the stale body %q",
			upd.Tag,
			n.Body)
	}
} // func TestNotificationSupersede(t *testing.T)

// Dequeueing must honor priority first, insertion order second, and
// every entry handed out must already be claimed.
func TestNotificationDequeueOrder(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var wantTags = []string{
		"request/o-neg/77",
		"appointment/4711",
		"drive/2023-11-18",
		"eligibility/renewal",
	}

	for i, tag := range wantTags {
		var (
			err error
			n   *objects.NotificationRequest
		)

		if n, err = db.NotificationDequeue(); err != nil {
			t.Fatalf("Cannot dequeue Notification #%d: %s",
				i+1,
				err.Error())
		} else if n == nil {
			t.Fatalf("Queue was empty after %d entries (expected %d)",
				i,
				len(wantTags))
		} else if n.Tag != tag {
			t.Fatalf("Dequeue #%d returned %q (expected %q)",
				i+1,
				n.Tag,
				tag)
		} else if n.Status != status.Delivered {
			t.Errorf("Dequeued Notification %q is in state %s (expected %s)",
				n.Tag,
				n.Status,
				status.Delivered)
		}
	}

	var (
		err error
		n   *objects.NotificationRequest
	)

	if n, err = db.NotificationDequeue(); err != nil {
		t.Fatalf("Error dequeueing from empty queue: %s",
			err.Error())
	} else if n != nil {
		t.Errorf("Dequeueing from an empty queue returned %q",
			n.Tag)
	}
} // func TestNotificationDequeueOrder(t *testing.T)

func TestNotificationMarkDelivered(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err error
		ok  bool
		n   *objects.NotificationRequest
	)

	if n, err = db.NotificationGetByTag("request/o-neg/77"); err != nil {
		t.Fatalf("Cannot look up Notification: %s", err.Error())
	} else if n == nil {
		t.Fatal("Notification request/o-neg/77 has vanished")
	} else if ok, err = db.NotificationMarkDelivered(n); err != nil {
		t.Fatalf("Cannot mark Notification %q as delivered: %s",
			n.Tag,
			err.Error())
	} else if !ok {
		t.Fatalf("Notification %q was not marked as delivered",
			n.Tag)
	} else if n.Delivered.IsZero() {
		t.Errorf("Notification %q has no delivery timestamp",
			n.Tag)
	}

	if ok, err = db.NotificationMarkActioned(n.ID); err != nil {
		t.Fatalf("Cannot mark Notification %q as actioned: %s",
			n.Tag,
			err.Error())
	} else if !ok {
		t.Fatalf("Notification %q was not marked as actioned",
			n.Tag)
	} else if ok, err = db.NotificationMarkActioned(n.ID); err != nil {
		t.Fatalf("Error re-marking Notification %q: %s",
			n.Tag,
			err.Error())
	} else if ok {
		t.Errorf("Marking Notification %q as actioned twice should be a no-op",
			n.Tag)
	}
} // func TestNotificationMarkDelivered(t *testing.T)

func TestNotificationExpire(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err error
		ok  bool
		n   *objects.NotificationRequest
	)

	if n, err = db.NotificationGetByTag("drive/2023-11-18"); err != nil {
		t.Fatalf("Cannot look up Notification: %s", err.Error())
	} else if n == nil {
		t.Fatal("Notification drive/2023-11-18 has vanished")
	} else if ok, err = db.NotificationExpire(n.ID, "dismissed"); err != nil {
		t.Fatalf("Cannot expire Notification %q: %s",
			n.Tag,
			err.Error())
	} else if !ok {
		t.Fatalf("Notification %q was not expired",
			n.Tag)
	} else if ok, err = db.NotificationExpire(n.ID, "dismissed"); err != nil {
		t.Fatalf("Error re-expiring Notification %q: %s",
			n.Tag,
			err.Error())
	} else if ok {
		t.Errorf("Expiring a terminal Notification should be a no-op")
	}
} // func TestNotificationExpire(t *testing.T)

func TestNotificationExpireStale(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err   error
		cnt   int64
		n     *objects.NotificationRequest
		stale = &objects.NotificationRequest{
			Tag:       "request/ab-pos/12",
			Priority:  priority.Critical,
			Title:     "AB positive needed",
			Timestamp: time.Now().Add(-2 * time.Hour),
		}
	)

	if err = db.NotificationEnqueue(stale); err != nil {
		t.Fatalf("Cannot enqueue Notification %q: %s",
			stale.Tag,
			err.Error())
	} else if cnt, err = db.NotificationExpireStale(time.Now()); err != nil {
		t.Fatalf("Cannot expire stale Notifications: %s",
			err.Error())
	} else if cnt != 1 {
		t.Fatalf("Expected 1 stale Notification, got %d",
			cnt)
	} else if n, err = db.NotificationGetByID(stale.ID); err != nil {
		t.Fatalf("Cannot look up Notification #%d: %s",
			stale.ID,
			err.Error())
	} else if n == nil {
		t.Fatalf("Notification #%d has vanished", stale.ID)
	} else if n.Status != status.Expired {
		t.Errorf("Stale Notification %q is in state %s (expected %s)",
			n.Tag,
			n.Status,
			status.Expired)
	} else if n.Reason != "stale" {
		t.Errorf("Unexpected expiry reason %q",
			n.Reason)
	}
} // func TestNotificationExpireStale(t *testing.T)

func TestNotificationPurgeOld(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err error
		cnt int64
		n   *objects.NotificationRequest
	)

	// Everything terminal was touched within the last few seconds, so a
	// cutoff in the future must catch all of it. Three entries are
	// terminal by now: the actioned one, the dismissed one, and the
	// stale one.
	if cnt, err = db.NotificationPurgeOld(time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Cannot purge old Notifications: %s",
			err.Error())
	} else if cnt != 3 {
		t.Errorf("Expected to purge 3 Notifications, got %d",
			cnt)
	} else if n, err = db.NotificationGetByTag("appointment/4711"); err != nil {
		t.Fatalf("Cannot look up Notification: %s", err.Error())
	} else if n == nil {
		t.Error("Purging terminal entries must not touch live ones")
	}
} // func TestNotificationPurgeOld(t *testing.T)

func TestBadgeCounter(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	var (
		err error
		cnt int
	)

	if cnt, err = db.BadgeGet(); err != nil {
		t.Fatalf("Cannot read badge counter: %s", err.Error())
	} else if cnt != 0 {
		t.Fatalf("Fresh badge counter is %d (expected 0)", cnt)
	} else if err = db.BadgeSet(3); err != nil {
		t.Fatalf("Cannot set badge counter: %s", err.Error())
	} else if cnt, err = db.BadgeGet(); err != nil {
		t.Fatalf("Cannot read badge counter: %s", err.Error())
	} else if cnt != 3 {
		t.Fatalf("Badge counter is %d (expected 3)", cnt)
	} else if err = db.BadgeSet(-5); err != nil {
		t.Fatalf("Cannot set badge counter: %s", err.Error())
	} else if cnt, err = db.BadgeGet(); err != nil {
		t.Fatalf("Cannot read badge counter: %s", err.Error())
	} else if cnt != 0 {
		t.Errorf("Negative badge counter was not clamped to 0, got %d", cnt)
	}
} // func TestBadgeCounter(t *testing.T)
