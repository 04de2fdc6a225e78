// /home/krylon/go/src/github.com/blicero/asclepius/backend/backend.go
// -*- mode: go; coding: utf-8; -*-
// Created on 10. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-07 21:18:44 krylon>

// Package backend implements the Daemon that runs on the donor's
// machine: it owns the notification queue and the response log in the
// database, hands notifications to the desktop via dbus, and keeps
// trying to deliver recorded responses to the collection server.
// Foreground clients talk to it over a small HTTP interface.
package backend

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/database"
	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/asclepius/objects"
	"github.com/cenkalti/backoff"
	"github.com/godbus/dbus/v5"
	"github.com/gorilla/mux"
	"github.com/grandcat/zeroconf"
)

const (
	deliveryInterval = time.Second * 2
	syncInterval     = time.Second * 30
	syncIntervalMax  = time.Minute * 15
	gcInterval       = time.Minute * 5
	retention        = time.Hour * 24 * 14
)

// Daemon is the centerpiece of the backend, coordinating between the
// database, dbus, the sync server, and the clients.
type Daemon struct {
	log        *log.Logger
	pool       *database.Pool
	bus        *dbus.Conn
	lock       sync.RWMutex
	active     bool
	capLock    sync.RWMutex
	caps       objects.Capabilities
	noCritical bool
	surface    notifySurface
	launcher   badgeSurface
	submitter  responseSubmitter
	web        http.Server
	router     *mux.Router
	listenAddr string
	hostname   string
	dnssd      *zeroconf.Server
	delLock    sync.Mutex
	fgLock     sync.RWMutex
	foreground bool
	syncLock   sync.Mutex
	syncActive bool
	syncWait   chan struct{}
	syncResult *objects.SyncResult
	syncURL    string
	evtLock    sync.Mutex
	events     objects.EventFlags
	idLock     sync.Mutex
	idCnt      int64
}

// Summon summons a Daemon and returns it. No sacrifice or idolatry is
// required.
//
// syncURL may be empty, in which case the Daemon browses the local
// network for a collection server via DNS-SD. noCritical forces the
// critical alert tier off even if the desktop would support it.
func Summon(addr, syncURL string, noCritical bool) (*Daemon, error) {
	var (
		err error
		d   = &Daemon{
			listenAddr: addr,
			syncURL:    syncURL,
			active:     true,
			router:     mux.NewRouter(),
		}
	)

	if d.log, err = common.GetLogger(logdomain.Backend); err != nil {
		fmt.Printf("ERROR initializing Logger: %s\n",
			err.Error())
		return nil, err
	} else if d.pool, err = database.NewPool(4); err != nil {
		d.log.Printf("[ERROR] Cannot initialize database pool: %s\n",
			err.Error())
		return nil, err
	}

	if d.hostname, err = os.Hostname(); err != nil {
		d.log.Printf("[ERROR] Cannot determine hostname: %s\n",
			err.Error())
		d.hostname = "localhost"
	}

	if d.bus, err = dbus.SessionBus(); err != nil {
		// No session bus means no desktop to put banners on. We keep
		// running, clients get their notifications by polling.
		d.log.Printf("[INFO] No DBus session bus, running restricted: %s\n",
			err.Error())
		d.bus = nil
	}

	d.noCritical = noCritical
	d.caps = d.probeCapabilities(noCritical)

	if d.caps.RestrictedPlatform {
		d.surface = &pollSurface{log: d.log}
		d.launcher = &nullBadge{}
	} else {
		d.surface = &dbusSurface{bus: d.bus, log: d.log}
		d.launcher = &launcherBadge{bus: d.bus, log: d.log}
	}

	d.submitter = &httpSubmitter{
		log:    d.log,
		client: http.Client{Timeout: time.Second * 10},
	}

	d.web.Addr = addr
	d.web.ErrorLog = d.log
	d.web.Handler = d.router

	if err = d.initWebHandlers(); err != nil {
		d.log.Printf("[ERROR] Failed to initialize web server: %s\n",
			err.Error())
		return nil, err
	}

	if err = d.initDNSSd(); err != nil {
		d.log.Printf("[ERROR] Cannot register with DNS-SD: %s\n",
			err.Error())
		// Not fatal, clients can still find us by the fixed port.
	}

	if syncURL == "" {
		go d.findSyncServer()
	}

	go d.deliveryLoop()
	go d.syncLoop()
	go d.gcLoop()
	go d.serveHTTP()

	return d, nil
} // func Summon(addr, syncURL string, noCritical bool) (*Daemon, error)

// IsAlive returns true if the Daemon's active flag is set.
func (d *Daemon) IsAlive() bool {
	d.lock.RLock()
	var alive = d.active
	d.lock.RUnlock()

	return alive
} // func (d *Daemon) IsAlive() bool

// Capabilities returns the most recent result of the platform probe.
func (d *Daemon) Capabilities() objects.Capabilities {
	d.capLock.RLock()
	var caps = d.caps
	d.capLock.RUnlock()
	return caps
} // func (d *Daemon) Capabilities() objects.Capabilities

// Banish clears the Daemon's active flag, telling components to shut down.
func (d *Daemon) Banish() error {
	var (
		err         error
		ctx, cancel = context.WithTimeout(context.Background(), time.Second*3)
	)
	defer cancel()

	if d.dnssd != nil {
		d.dnssd.Shutdown()
	}

	if err = d.web.Shutdown(ctx); err != nil {
		d.log.Printf("[ERROR] Failed to shutdown web server: %s\n",
			err.Error())
	}

	if ctx.Err() != nil {
		err = ctx.Err()
		d.log.Printf("[ERROR] Failed to gracefully shut down web server: %s\n",
			ctx.Err().Error())
		d.web.Close() // nolint: errcheck
	}

	d.lock.Lock()
	d.active = false
	d.lock.Unlock()
	return err
} // func (d *Daemon) Banish() error

// SetForeground records whether a client application is currently
// visible to the donor. While one is, everything short of the critical
// tier stays in the queue for the client to render itself.
//
// Regaining visibility means the donor is looking at the app: whatever
// was unread has been seen, so the badge comes down, and waiting
// responses get their chance right away instead of on the next timer
// tick.
func (d *Daemon) SetForeground(fg bool) {
	d.fgLock.Lock()
	var wasFg = d.foreground
	d.foreground = fg
	d.fgLock.Unlock()

	d.log.Printf("[DEBUG] Foreground client visible: %t\n", fg)

	if fg && !wasFg {
		if err := d.BadgeClear(); err != nil {
			d.log.Printf("[ERROR] Cannot clear badge counter: %s\n",
				err.Error())
		}

		go d.SyncPending() // nolint: errcheck
	}
} // func (d *Daemon) SetForeground(fg bool)

func (d *Daemon) isForeground() bool {
	d.fgLock.RLock()
	var fg = d.foreground
	d.fgLock.RUnlock()
	return fg
} // func (d *Daemon) isForeground() bool

func (d *Daemon) deliveryLoop() {
	defer d.log.Println("[TRACE] Quitting deliveryLoop")

	var tick = time.NewTicker(deliveryInterval)
	defer tick.Stop()

	for d.IsAlive() {
		<-tick.C

		for {
			var (
				err error
				n   *objects.NotificationRequest
			)

			if n, err = d.ProcessNext(); err != nil {
				d.log.Printf("[ERROR] Failed to process head of queue: %s\n",
					err.Error())
				break
			} else if n == nil {
				break
			}
		}
	}
} // func (d *Daemon) deliveryLoop()

func (d *Daemon) syncLoop() {
	defer d.log.Println("[TRACE] Quitting syncLoop")

	var delay = backoff.NewExponentialBackOff()
	delay.InitialInterval = syncInterval
	delay.MaxInterval = syncIntervalMax
	delay.MaxElapsedTime = 0 // keep retrying forever

	for d.IsAlive() {
		var (
			err error
			res *objects.SyncResult
		)

		if res, err = d.SyncPending(); err != nil {
			d.log.Printf("[ERROR] Sync run failed: %s\n",
				err.Error())
			time.Sleep(delay.NextBackOff())
		} else if len(res.Failed) > 0 {
			// The server is flaky or unreachable, back off.
			time.Sleep(delay.NextBackOff())
		} else {
			delay.Reset()
			time.Sleep(syncInterval)
		}
	}
} // func (d *Daemon) syncLoop()

func (d *Daemon) gcLoop() {
	defer d.log.Println("[TRACE] Quitting gcLoop")

	var tick = time.NewTicker(gcInterval)
	defer tick.Stop()

	for d.IsAlive() {
		<-tick.C

		var (
			err    error
			cnt    int64
			now    = time.Now()
			cutoff = now.Add(-retention)
			db     = d.pool.Get()
		)

		if cnt, err = db.NotificationExpireStale(now); err != nil {
			d.log.Printf("[ERROR] Cannot expire stale Notifications: %s\n",
				err.Error())
		} else if cnt > 0 {
			d.log.Printf("[INFO] Expired %d stale Notifications\n",
				cnt)
			d.noteEvent(func(ev *objects.EventFlags) { ev.QueueDepthChanged = true })
		}

		if cnt, err = db.NotificationPurgeOld(cutoff); err != nil {
			d.log.Printf("[ERROR] Cannot purge old Notifications: %s\n",
				err.Error())
		} else if cnt > 0 {
			d.log.Printf("[DEBUG] Purged %d old Notifications\n",
				cnt)
		}

		if cnt, err = db.ResponsePurgeSynced(cutoff); err != nil {
			d.log.Printf("[ERROR] Cannot purge synced Responses: %s\n",
				err.Error())
		} else if cnt > 0 {
			d.log.Printf("[DEBUG] Purged %d synced Responses\n",
				cnt)
		}

		d.pool.Put(db)
	}
} // func (d *Daemon) gcLoop()
