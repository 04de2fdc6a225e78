// /home/krylon/go/src/github.com/blicero/asclepius/backend/helpers.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-06 21:10:44 krylon>

package backend

import (
	"fmt"
	"regexp"

	"github.com/grandcat/zeroconf"
)

var addrPat = regexp.MustCompile(`:(\d+)$`)

func rrStr(rr *zeroconf.ServiceEntry) string {
	return fmt.Sprintf("%s:%d",
		rr.HostName,
		rr.Port)
} // func rrStr(rr *zeroconf.ServiceEntry) string
