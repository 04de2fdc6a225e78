// /home/krylon/go/src/github.com/blicero/asclepius/objects/errors.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-02 17:53:40 krylon>

package objects

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidRequestError is returned when a NotificationRequest is missing
// fields it cannot be queued without. It is the caller's mistake and is
// reported synchronously; the request is not queued.
type InvalidRequestError struct {
	Missing []string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid notification request, missing field(s): %s",
		strings.Join(e.Missing, ", "))
} // func (e *InvalidRequestError) Error() string

// ErrNotFound indicates that a status transition was requested for an
// ID the store does not know. Callers treat this as a no-op.
var ErrNotFound = errors.New("no such entry")
