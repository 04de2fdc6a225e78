// /home/krylon/go/src/github.com/blicero/asclepius/backend/web.go
// -*- mode: go; coding: utf-8; -*-
// Created on 16. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-08 19:51:33 krylon>

package backend

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/blicero/asclepius/database"
	"github.com/blicero/asclepius/objects"
	"github.com/blicero/asclepius/objects/action"
	"github.com/blicero/asclepius/objects/priority"
	"github.com/pquerna/ffjson/ffjson"
)

func (d *Daemon) initWebHandlers() error {
	d.router.HandleFunc("/notification/queue", d.handleNotificationQueue)
	d.router.HandleFunc("/queue/status", d.handleQueueStatus)
	d.router.HandleFunc("/response/record", d.handleResponseRecord)
	d.router.HandleFunc("/responses/sync", d.handleSyncTrigger)
	d.router.HandleFunc("/badge", d.handleBadgeGet)
	d.router.HandleFunc("/badge/clear", d.handleBadgeClear)
	d.router.HandleFunc("/visibility", d.handleVisibility)
	d.router.HandleFunc("/events", d.handleEvents)
	d.router.HandleFunc("/capabilities", d.handleCapabilities)

	return nil
} // func (d *Daemon) initWebHandlers() error

func (d *Daemon) serveHTTP() {
	var err error

	defer d.log.Println("[INFO] Web server is shutting down")

	d.log.Printf("[INFO] Web interface is going online at %s\n", d.web.Addr)

	if err = d.web.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			d.log.Printf("[ERROR] ListenAndServe returned an error: %s\n",
				err.Error())
		} else {
			d.log.Println("[INFO] HTTP Server has shut down.")
		}
	}
} // func (d *Daemon) serveHTTP()

func (d *Daemon) handleNotificationQueue(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err                   error
		db                    *database.Database
		n                     objects.NotificationRequest
		prioStr, dataStr, msg string
		prio                  int64
		response              = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	response.Correlation = r.FormValue("correlation")

	n.Tag = r.FormValue("tag")
	n.Title = r.FormValue("title")
	n.Body = r.FormValue("body")
	n.Icon = r.FormValue("icon")
	n.RequiresResponse = r.FormValue("need_reply") == "true"
	prioStr = r.FormValue("priority")
	dataStr = r.FormValue("data")

	if prioStr != "" {
		if prio, err = strconv.ParseInt(prioStr, 10, 8); err != nil {
			msg = fmt.Sprintf("Cannot parse priority %q: %s",
				prioStr,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		}
		n.Priority = priority.Priority(prio)
	}

	if dataStr != "" {
		if err = ffjson.Unmarshal([]byte(dataStr), &n.Data); err != nil {
			msg = fmt.Sprintf("Cannot parse data payload: %s",
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		}
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if err = db.NotificationEnqueue(&n); err != nil {
		msg = fmt.Sprintf("Cannot enqueue Notification %q: %s",
			n.Tag,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	d.noteEvent(func(ev *objects.EventFlags) { ev.QueueDepthChanged = true })

	response.Message = n.UUID
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleNotificationQueue(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err error
		db  *database.Database
		st  *objects.QueueStatus
		buf []byte
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if st, err = db.NotificationPeekStatus(); err != nil {
		d.log.Printf("[ERROR] Cannot query queue status: %s\n",
			err.Error())
	}

	if buf, err = ffjson.Marshal(st); err != nil {
		d.log.Printf("[ERROR] Cannot serialize queue status: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleQueueStatus(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleResponseRecord(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		rec      objects.ResponseRecord
		msg      string
		response = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	response.Correlation = r.FormValue("correlation")

	rec.RequestUUID = r.FormValue("request")
	rec.Donor = r.FormValue("donor")
	rec.Reason = r.FormValue("reason")

	if rec.Action, err = action.Parse(r.FormValue("action")); err != nil {
		msg = fmt.Sprintf("Cannot parse action %q: %s",
			r.FormValue("action"),
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	if err = d.RecordResponse(&rec); err != nil {
		msg = fmt.Sprintf("Cannot record Response by %s: %s",
			rec.Donor,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.Message = rec.UUID
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleResponseRecord(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleSyncTrigger(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err error
		res *objects.SyncResult
		buf []byte
	)

	if res, err = d.SyncPending(); err != nil {
		d.log.Printf("[ERROR] Sync run failed: %s\n",
			err.Error())
		res = new(objects.SyncResult)
	}

	if buf, err = ffjson.Marshal(res); err != nil {
		d.log.Printf("[ERROR] Cannot serialize sync result: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleSyncTrigger(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleBadgeGet(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		cnt      int
		response = objects.Response{ID: d.getID()}
	)

	if cnt, err = d.BadgeCount(); err != nil {
		d.log.Printf("[ERROR] Cannot read badge counter: %s\n",
			err.Error())
		response.Message = err.Error()
	} else {
		response.Message = strconv.Itoa(cnt)
		response.Status = true
	}

	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleBadgeGet(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleBadgeClear(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		response = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err == nil {
		response.Correlation = r.FormValue("correlation")
	}

	if err = d.BadgeClear(); err != nil {
		d.log.Printf("[ERROR] Cannot clear badge counter: %s\n",
			err.Error())
		response.Message = err.Error()
	} else {
		response.Message = "OK"
		response.Status = true
	}

	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleBadgeClear(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleVisibility(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		fg       bool
		msg      string
		response = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		d.log.Printf("[ERROR] Cannot parse form data: %s\n",
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	response.Correlation = r.FormValue("correlation")

	if fg, err = strconv.ParseBool(r.FormValue("foreground")); err != nil {
		msg = fmt.Sprintf("Cannot parse foreground flag %q: %s",
			r.FormValue("foreground"),
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	d.SetForeground(fg)

	response.Message = "OK"
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleVisibility(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleEvents(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err error
		ev  objects.EventFlags
		buf []byte
	)

	if ev, err = d.EventsFetch(); err != nil {
		d.log.Printf("[ERROR] Cannot fetch events: %s\n",
			err.Error())
	}

	if buf, err = ffjson.Marshal(&ev); err != nil {
		d.log.Printf("[ERROR] Cannot serialize events: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleEvents(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		buf  []byte
		caps = d.Probe()
	)

	if buf, err = ffjson.Marshal(&caps); err != nil {
		d.log.Printf("[ERROR] Cannot serialize capabilities: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) handleCapabilities(w http.ResponseWriter, r *http.Request)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Helpers //////////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response) {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(res); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Response object %#v: %s\n",
			res,
			err.Error())
		return
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response)

func (d *Daemon) getID() int64 {
	d.idLock.Lock()
	d.idCnt++
	var id = d.idCnt
	d.idLock.Unlock()
	return id
} // func (d *Daemon) getID() int64
