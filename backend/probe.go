// /home/krylon/go/src/github.com/blicero/asclepius/backend/probe.go
// -*- mode: go; coding: utf-8; -*-
// Created on 11. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-06 19:33:12 krylon>

package backend

import (
	"os"
	"time"

	"github.com/blicero/asclepius/objects"
)

// envStandalone marks an installation that runs without the donor app,
// e.g. on a kiosk machine at a donation center.
const envStandalone = "ASCLEPIUS_STANDALONE"

// probeCapabilities asks the desktop what it can do for us. The answer
// decides which delivery tiers are available.
func (d *Daemon) probeCapabilities(noCritical bool) objects.Capabilities {
	var caps = objects.Capabilities{
		Checked:    time.Now(),
		Standalone: os.Getenv(envStandalone) != "",
	}

	if d.bus == nil {
		caps.RestrictedPlatform = true
	} else {
		var (
			err     error
			srvCaps []string
			obj     = d.bus.Object(notifyObj, notifyPath)
		)

		if err = obj.Call(capMethod, 0).Store(&srvCaps); err != nil {
			d.log.Printf("[INFO] No notification service on the session bus, running restricted: %s\n",
				err.Error())
			caps.RestrictedPlatform = true
		} else {
			for _, c := range srvCaps {
				// A server that keeps notifications around can
				// carry the critical tier, one that cannot would
				// silently drop the banner after a few seconds.
				if c == "persistence" {
					caps.CriticalAlerts = true
					break
				}
			}
		}
	}

	if noCritical {
		caps.CriticalAlerts = false
	}

	d.log.Printf("[INFO] Platform probe: restricted=%t standalone=%t critical=%t\n",
		caps.RestrictedPlatform,
		caps.Standalone,
		caps.CriticalAlerts)

	return caps
} // func (d *Daemon) probeCapabilities(noCritical bool) objects.Capabilities

// Probe re-runs the platform detection on demand. Standalone mode and
// the presence of a notification service can change while we run, the
// critical-alert entitlement cannot: that one stays as it was settled
// at startup.
func (d *Daemon) Probe() objects.Capabilities {
	var caps = d.probeCapabilities(d.noCritical)

	d.capLock.Lock()
	caps.CriticalAlerts = d.caps.CriticalAlerts
	d.caps = caps
	d.capLock.Unlock()

	return caps
} // func (d *Daemon) Probe() objects.Capabilities
