// /home/krylon/go/src/github.com/blicero/asclepius/objects/response.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-02 17:51:40 krylon>

package objects

//go:generate ffjson response.go

// Response is what the backend sends to a client after processing a
// request. Correlation echoes the client-generated correlation ID, so
// a client that resends after a timeout can recognize the reply.
type Response struct {
	ID          int64
	Correlation string
	Status      bool
	Message     string
}
