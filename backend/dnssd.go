// /home/krylon/go/src/github.com/blicero/asclepius/backend/dnssd.go
// -*- mode: go; coding: utf-8; -*-
// Created on 17. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-07 19:05:27 krylon>

package backend

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/grandcat/zeroconf"
)

const (
	srvService  = "_asclepius._tcp" // what we advertise
	syncService = "_bloodsync._tcp" // what the collection server advertises
	srvDomain   = "local."
	browseDelay = time.Second * 30
)

func (d *Daemon) initDNSSd() error {
	var (
		err   error
		match []string
		port  int64
		srv   *zeroconf.Server
	)

	match = addrPat.FindStringSubmatch(d.web.Addr)

	if match == nil {
		return fmt.Errorf("Cannot extract HTTP port from server address %q",
			d.web.Addr)
	} else if port, err = strconv.ParseInt(match[1], 10, 16); err != nil {
		d.log.Printf("[ERROR] Cannot parse HTTP port from server address %q: %s\n",
			d.web.Addr,
			err.Error())
		return err
	}

	var txt = []string{"txtv=0", fmt.Sprintf("v=%s", common.Version)}

	var instanceName = fmt.Sprintf("%s@%s",
		common.AppName,
		d.hostname)

	if srv, err = zeroconf.Register(instanceName, srvService, srvDomain, int(port), txt, nil); err != nil {
		d.log.Printf("[ERROR] Cannot register service with DNS-SD: %s\n",
			err.Error())
		return err
	}

	d.dnssd = srv
	return nil
} // func (d *Daemon) initDNSSd()  error

// findSyncServer browses the local network for a collection server
// until one turns up or somebody sets the URL by hand.
func (d *Daemon) findSyncServer() {
	defer d.log.Println("[TRACE] Quitting findSyncServer")

	for d.IsAlive() && d.syncServerURL() == "" {
		var (
			err      error
			resolver *zeroconf.Resolver
			entries  chan *zeroconf.ServiceEntry
		)

		if resolver, err = zeroconf.NewResolver(nil); err != nil {
			d.log.Printf("[ERROR] Cannot create DNS-SD Resolver: %s\n",
				err.Error())
			return
		}

		entries = make(chan *zeroconf.ServiceEntry)

		go d.processSyncEntries(entries)

		ctx, cancel := context.WithCancel(context.Background())

		if err = resolver.Browse(ctx, syncService, srvDomain, entries); err != nil {
			d.log.Printf("[ERROR] Failed to browse for %s: %s\n",
				syncService,
				err.Error())
		}

		time.Sleep(browseDelay)
		cancel()
	}
} // func (d *Daemon) findSyncServer()

func (d *Daemon) processSyncEntries(queue <-chan *zeroconf.ServiceEntry) {
	for entry := range queue {
		var addr = fmt.Sprintf("http://%s/response/submit",
			rrStr(entry))

		d.log.Printf("[DEBUG] Found collection server %q at %s\n",
			entry.Instance,
			addr)

		d.setSyncServerURL(addr)
	}
} // func (d *Daemon) processSyncEntries(queue <-chan *zeroconf.ServiceEntry)
