// /home/krylon/go/src/github.com/blicero/asclepius/logdomain/logdomain.go
// -*- mode: go; coding: utf-8; -*-
// Created on 03. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-04-12 19:04:48 krylon>

// Package logdomain provides symbolic constants to identify the various
// parts of the application that perform logging.
package logdomain

//go:generate stringer -type=ID

// ID identifies a log source.
type ID uint8

// Symbolic constants for the parts of the application that do logging.
const (
	Common ID = iota
	Backend
	Database
	Delivery
	Badge
	Sync
	Web
	DBus
	Client
)

// AllDomains returns a slice of all the known log sources.
func AllDomains() []ID {
	return []ID{
		Common,
		Backend,
		Database,
		Delivery,
		Badge,
		Sync,
		Web,
		DBus,
		Client,
	}
} // func AllDomains() []ID
