// /home/krylon/go/src/github.com/blicero/asclepius/objects/tier/tier.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-04-11 18:22:02 krylon>

//go:generate stringer -type=Tier

// Package tier contains symbolic constants for the escalation tier a
// Notification is displayed at. The tier is decided at delivery time
// from the request's Priority and the platform's capabilities.
package tier

// Tier is the escalation level of a displayed Notification.
type Tier uint8

// Critical bypasses the platform's silencing and demands interaction.
// Urgent demands interaction but honors silencing.
// Standard is dismissible.
const (
	Critical Tier = iota + 1
	Urgent
	Standard
)
