// /home/krylon/go/src/github.com/blicero/asclepius/database/query/query.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-03 18:02:11 krylon>

// Package query provides symbolic constants for identifying SQL queries.
package query

//go:generate stringer -type=ID

type ID uint8

const (
	NotificationAdd ID = iota
	NotificationUpdatePayload
	NotificationGetByTag
	NotificationGetByID
	NotificationGetByUUID
	NotificationGetNext
	NotificationClaim
	NotificationQueueDepth
	NotificationSetDelivered
	NotificationSetActioned
	NotificationExpire
	NotificationExpireStale
	NotificationPurgeOld
	ResponseAdd
	ResponseGetByID
	ResponseGetPending
	ResponseGetAbandoned
	ResponseMarkSynced
	ResponseMarkFailed
	ResponsePurgeSynced
	BadgeGet
	BadgeSet
)
