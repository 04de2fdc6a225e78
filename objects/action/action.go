// /home/krylon/go/src/github.com/blicero/asclepius/objects/action/action.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-04-11 18:22:40 krylon>

//go:generate stringer -type=Action

// Package action contains symbolic constants for the ways a donor can
// react to a delivered Notification.
package action

import (
	"fmt"
	"strings"
)

// Action is a donor's reaction to a Notification.
type Action uint8

// The reactions the platform knows about.
const (
	Accept Action = iota
	Decline
	Call
	Share
)

// Valid returns true if a is one of the known Action values.
func (a Action) Valid() bool {
	return a <= Share
} // func (a Action) Valid() bool

// Parse returns the Action named by the given string. Case does not
// matter.
func Parse(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "accept":
		return Accept, nil
	case "decline":
		return Decline, nil
	case "call":
		return Call, nil
	case "share":
		return Share, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
} // func Parse(s string) (Action, error)
