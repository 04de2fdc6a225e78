// /home/krylon/go/src/github.com/blicero/asclepius/objects/01_notification_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-05 17:14:27 krylon>

package objects

import (
	"testing"
	"time"

	"github.com/blicero/asclepius/objects/priority"
)

func TestValidate(t *testing.T) {
	type testCase struct {
		n           NotificationRequest
		expectError bool
	}

	var cases = []testCase{
		{
			n: NotificationRequest{
				Tag:   "drive/test",
				Title: "Blood drive",
			},
		},
		{
			n:           NotificationRequest{Title: "No tag"},
			expectError: true,
		},
		{
			n:           NotificationRequest{Tag: "no/title"},
			expectError: true,
		},
		{
			n:           NotificationRequest{Body: "Nothing else"},
			expectError: true,
		},
	}

	for _, c := range cases {
		var err = c.n.Validate()

		if c.expectError && err == nil {
			t.Errorf("Validation of %#v should have failed",
				c.n)
		} else if !c.expectError && err != nil {
			t.Errorf("Validation of %q failed: %s",
				c.n.Tag,
				err.Error())
		} else if err != nil {
			if _, ok := err.(*InvalidRequestError); !ok {
				t.Errorf("Unexpected error type %T: %s",
					err,
					err.Error())
			}
		}
	}
} // func TestValidate(t *testing.T)

func TestStaleness(t *testing.T) {
	var (
		now   = time.Now()
		cases = []struct {
			prio  priority.Priority
			age   time.Duration
			stale bool
		}{
			{priority.Critical, time.Minute * 10, false},
			{priority.Critical, time.Hour, true},
			{priority.Urgent, time.Hour, false},
			{priority.Urgent, time.Hour * 3, true},
			{priority.Normal, time.Hour * 12, false},
			{priority.Normal, time.Hour * 36, true},
		}
	)

	for _, c := range cases {
		var n = NotificationRequest{
			Tag:       "staleness/test",
			Title:     "How fresh am I?",
			Priority:  c.prio,
			Timestamp: now.Add(-c.age),
		}

		if n.IsStale(now) != c.stale {
			t.Errorf("%s entry aged %s: IsStale = %t (expected %t)",
				c.prio,
				c.age,
				!c.stale,
				c.stale)
		}
	}
} // func TestStaleness(t *testing.T)
