// /home/krylon/go/src/github.com/blicero/asclepius/objects/priority/priority.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-04-11 18:20:33 krylon>

//go:generate stringer -type=Priority

// Package priority contains symbolic constants to rank Notifications
// by urgency. Lower values are served first.
package priority

// Priority ranks a Notification by urgency.
type Priority uint8

// Critical is for life-threatening emergencies, Urgent for requests
// that should be acted upon soon, Normal for reminders and
// confirmations.
const (
	Critical Priority = iota + 1
	Urgent
	Normal
)

// Valid returns true if p is one of the known Priority values.
func (p Priority) Valid() bool {
	return Critical <= p && p <= Normal
} // func (p Priority) Valid() bool

// AllPriorities returns a slice of all valid Priority values, most
// urgent first.
func AllPriorities() []Priority {
	return []Priority{Critical, Urgent, Normal}
} // func AllPriorities() []Priority
