// /home/krylon/go/src/github.com/blicero/asclepius/objects/syncstatus/syncstatus.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-04-11 18:21:31 krylon>

//go:generate stringer -type=Status

// Package syncstatus contains symbolic constants to describe the
// synchronization state of a ResponseRecord.
package syncstatus

// Status describes whether a ResponseRecord has been acknowledged by
// the collection server.
type Status uint8

// Pending means the record has not been submitted yet.
// Synced means the server has acknowledged it.
// Failed means the most recent submission attempt failed.
const (
	Pending Status = iota
	Synced
	Failed
)
