// /home/krylon/go/src/github.com/blicero/asclepius/objects/notification.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-02 17:48:26 krylon>

// Package objects provides the data types used by the application.
package objects

import (
	"time"

	"github.com/blicero/asclepius/objects/priority"
	"github.com/blicero/asclepius/objects/status"
)

//go:generate ffjson notification.go

// NotificationRequest is the logical unit of work: one alert that is to
// be displayed on the donor's device.
//
// The Tag is the deduplication key; as long as a request with a given
// Tag is live (Queued or Delivered), a new request with the same Tag
// supersedes it instead of being queued alongside it. Producers derive
// the Tag deterministically from domain data (e.g. "emergency-1234"),
// so re-broadcasts of the same emergency do not stack up.
type NotificationRequest struct {
	ID               int64
	UUID             string
	Tag              string
	Priority         priority.Priority
	Title            string
	Body             string
	Icon             string
	Data             map[string]string
	RequiresResponse bool
	Status           status.Status
	Reason           string
	Timestamp        time.Time
	Delivered        time.Time
	Changed          time.Time
}

// Payload returns the request's Title and Body.
func (n *NotificationRequest) Payload() (string, string) {
	return n.Title, n.Body
} // func (n *NotificationRequest) Payload() (string, string)

// Validate checks that the fields required for queueing are present.
func (n *NotificationRequest) Validate() error {
	var missing []string

	if n.Title == "" {
		missing = append(missing, "title")
	}
	if n.Tag == "" {
		missing = append(missing, "tag")
	}

	if len(missing) > 0 {
		return &InvalidRequestError{Missing: missing}
	}

	return nil
} // func (n *NotificationRequest) Validate() error

// StaleAfter returns how long a queued request of the given priority
// remains worth delivering. A critical alert that could not be shown
// for half an hour is no longer actionable.
func (n *NotificationRequest) StaleAfter() time.Duration {
	switch n.Priority {
	case priority.Critical:
		return time.Minute * 30
	case priority.Urgent:
		return time.Hour * 2
	default:
		return time.Hour * 24
	}
} // func (n *NotificationRequest) StaleAfter() time.Duration

// IsStale returns true if the request has been waiting longer than its
// priority permits.
func (n *NotificationRequest) IsStale(now time.Time) bool {
	return now.Sub(n.Timestamp) > n.StaleAfter()
} // func (n *NotificationRequest) IsStale(now time.Time) bool

// IsNewer returns true if the receiver's Changed stamp is more recent
// than the argument's.
func (n *NotificationRequest) IsNewer(other *NotificationRequest) bool {
	return n.Changed.After(other.Changed)
} // func (n *NotificationRequest) IsNewer(other *NotificationRequest) bool
