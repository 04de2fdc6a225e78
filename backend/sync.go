// /home/krylon/go/src/github.com/blicero/asclepius/backend/sync.go
// -*- mode: go; coding: utf-8; -*-
// Created on 14. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-08 18:46:29 krylon>

package backend

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/blicero/asclepius/objects"
	"github.com/pquerna/ffjson/ffjson"
)

// ErrNoSyncServer means we have neither been told where the collection
// server lives nor found one on the local network yet.
var ErrNoSyncServer = errors.New("no sync server is known")

// responseSubmitter delivers a single ResponseRecord to the collection
// server.
type responseSubmitter interface {
	Submit(serverURL string, r *objects.ResponseRecord) error
}

type httpSubmitter struct {
	log    *log.Logger
	client http.Client
}

func (s *httpSubmitter) Submit(serverURL string, r *objects.ResponseRecord) error {
	if serverURL == "" {
		return ErrNoSyncServer
	}

	var (
		err  error
		buf  []byte
		rply *http.Response
		res  objects.Response
		vals = url.Values{
			"uuid":      {r.UUID},
			"request":   {r.RequestUUID},
			"donor":     {r.Donor},
			"action":    {r.Action.String()},
			"reason":    {r.Reason},
			"timestamp": {r.Timestamp.Format(time.RFC3339)},
		}
	)

	if rply, err = s.client.PostForm(serverURL, vals); err != nil {
		return err
	}

	defer rply.Body.Close() // nolint: errcheck

	if rply.StatusCode != 200 {
		return fmt.Errorf("sync server said %s", rply.Status)
	} else if buf, err = io.ReadAll(rply.Body); err != nil {
		return err
	} else if err = ffjson.Unmarshal(buf, &res); err != nil {
		return err
	} else if !res.Status {
		return fmt.Errorf("sync server rejected response: %s", res.Message)
	}

	return nil
} // func (s *httpSubmitter) Submit(serverURL string, r *objects.ResponseRecord) error

func (d *Daemon) syncServerURL() string {
	d.syncLock.Lock()
	var addr = d.syncURL
	d.syncLock.Unlock()
	return addr
} // func (d *Daemon) syncServerURL() string

func (d *Daemon) setSyncServerURL(addr string) {
	d.syncLock.Lock()
	if d.syncURL == "" {
		d.log.Printf("[INFO] Using sync server at %s\n", addr)
		d.syncURL = addr
	}
	d.syncLock.Unlock()
} // func (d *Daemon) setSyncServerURL(addr string)

// RecordResponse writes a donor's response to the local log. This
// works with the network cable unplugged, which is the whole point:
// the sync loop takes it from there.
//
// If the response refers to a live notification, that notification is
// settled and the badge counter comes down.
func (d *Daemon) RecordResponse(r *objects.ResponseRecord) error {
	var (
		err error
		n   *objects.NotificationRequest
		db  = d.pool.Get()
	)
	defer d.pool.Put(db)

	if !r.Action.Valid() {
		return fmt.Errorf("invalid action %d", r.Action)
	} else if err = db.ResponseAdd(r); err != nil {
		return err
	}

	if r.RequestUUID != "" {
		if n, err = db.NotificationGetByUUID(r.RequestUUID); err != nil {
			d.log.Printf("[ERROR] Cannot look up Notification %s: %s\n",
				r.RequestUUID,
				err.Error())
		} else if n != nil {
			var settled bool

			// MarkActioned is idempotent; a response delivered twice
			// must only lower the badge once.
			if settled, err = db.NotificationMarkActioned(n.ID); err != nil {
				d.log.Printf("[ERROR] Cannot settle Notification %q: %s\n",
					n.Tag,
					err.Error())
			} else if settled && n.RequiresResponse {
				if _, err = d.BadgeIncrement(-1); err != nil {
					d.log.Printf("[ERROR] Cannot lower badge counter: %s\n",
						err.Error())
				}
			}

			if settled {
				d.noteEvent(func(ev *objects.EventFlags) { ev.QueueDepthChanged = true })
			}
		}
	}

	return nil
} // func (d *Daemon) RecordResponse(r *objects.ResponseRecord) error

// SyncPending pushes unacknowledged responses to the collection
// server, oldest first. Only one sync runs at a time; a call that
// finds one in flight waits for it and gets that run's result,
// flagged as such, instead of starting a second batch.
//
// Each record is submitted and settled on its own, so one rejected
// record costs itself an attempt and nothing else.
func (d *Daemon) SyncPending() (*objects.SyncResult, error) {
	d.syncLock.Lock()
	if d.syncActive {
		var wait = d.syncWait
		d.syncLock.Unlock()

		<-wait

		d.syncLock.Lock()
		var joined = *d.syncResult
		d.syncLock.Unlock()

		joined.InFlight = true
		return &joined, nil
	}
	d.syncActive = true
	d.syncWait = make(chan struct{})
	var serverURL = d.syncURL
	d.syncLock.Unlock()

	var (
		err       error
		pending   []objects.ResponseRecord
		abandoned []objects.ResponseRecord
		res       = new(objects.SyncResult)
		db        = d.pool.Get()
	)
	defer d.pool.Put(db)

	defer func() {
		d.syncLock.Lock()
		d.syncResult = res
		d.syncActive = false
		close(d.syncWait)
		d.syncLock.Unlock()
	}()

	if pending, err = db.ResponseGetPending(); err != nil {
		return nil, err
	}

	for i := range pending {
		var r = &pending[i]

		if err = d.submitter.Submit(serverURL, r); err != nil {
			d.log.Printf("[INFO] Cannot submit Response %s (attempt %d): %s\n",
				r.UUID,
				r.Attempts+1,
				err.Error())

			if err = db.ResponseMarkFailed(r, err.Error()); err != nil {
				d.log.Printf("[ERROR] Cannot record failed attempt for Response %s: %s\n",
					r.UUID,
					err.Error())
				return nil, err
			}

			if !r.Abandoned() {
				res.Failed = append(res.Failed, r.ID)
			}
		} else if err = db.ResponseMarkSynced(r); err != nil {
			d.log.Printf("[ERROR] Cannot mark Response %s as synced: %s\n",
				r.UUID,
				err.Error())
			return nil, err
		} else {
			res.Synced = append(res.Synced, r.ID)
		}
	}

	if abandoned, err = db.ResponseGetAbandoned(); err != nil {
		d.log.Printf("[ERROR] Cannot query abandoned Responses: %s\n",
			err.Error())
	} else {
		for i := range abandoned {
			res.Abandoned = append(res.Abandoned, abandoned[i].ID)
		}
		if len(abandoned) > 0 {
			d.log.Printf("[WARNING] %d Responses have used up their sync attempts and need attention\n",
				len(abandoned))
		}
	}

	if len(res.Synced) > 0 {
		d.noteEvent(func(ev *objects.EventFlags) { ev.ResponsesSynced = true })
	}

	return res, nil
} // func (d *Daemon) SyncPending() (*objects.SyncResult, error)
