// /home/krylon/go/src/github.com/blicero/asclepius/objects/capability.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-02 17:53:02 krylon>

package objects

import "time"

//go:generate ffjson capability.go

// Capabilities describes what the platform the agent runs on can do.
// CriticalAlerts is only meaningful after the permission probe has run,
// i.e. after the backend has been initialized.
type Capabilities struct {
	RestrictedPlatform bool
	Standalone         bool
	CriticalAlerts     bool
	Checked            time.Time
}
