// /home/krylon/go/src/github.com/blicero/asclepius/objects/status/status.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-04-11 18:21:07 krylon>

//go:generate stringer -type=Status

// Package status contains symbolic constants to describe the lifecycle
// state of a NotificationRequest.
package status

// Status describes where in its lifecycle a NotificationRequest is.
type Status uint8

// Queued means the request is waiting in the queue.
// Delivered means it has been handed to the platform notification surface.
// Actioned means the donor has reacted to it.
// Expired means it was dropped, either because delivery failed or
// because it went stale before it could be delivered.
const (
	Queued Status = iota
	Delivered
	Actioned
	Expired
)

// Live returns true if a request in this state still occupies its tag.
func (s Status) Live() bool {
	return s == Queued || s == Delivered
} // func (s Status) Live() bool

// Terminal returns true if the state permits no further transitions.
func (s Status) Terminal() bool {
	return s == Actioned || s == Expired
} // func (s Status) Terminal() bool
