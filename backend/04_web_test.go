// /home/krylon/go/src/github.com/blicero/asclepius/backend/04_web_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 21. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-08 20:12:29 krylon>

package backend

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/objects"
	"github.com/pquerna/ffjson/ffjson"
)

var srv *httptest.Server

func TestWebStart(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	srv = httptest.NewServer(back.router)

	// While a client is visible, anything short of critical stays in
	// the queue, so the depth checks below are not racing the
	// delivery loop.
	back.SetForeground(true)
} // func TestWebStart(t *testing.T)

func postForm(t *testing.T, path string, vals url.Values) *objects.Response {
	t.Helper()

	var (
		err  error
		buf  []byte
		rply *http.Response
		res  objects.Response
	)

	vals.Set("correlation", common.GetUUID())

	if rply, err = srv.Client().PostForm(srv.URL+path, vals); err != nil {
		t.Fatalf("Cannot POST to %s: %s", path, err.Error())
	}

	defer rply.Body.Close() // nolint: errcheck

	if buf, err = io.ReadAll(rply.Body); err != nil {
		t.Fatalf("Cannot read reply from %s: %s", path, err.Error())
	} else if err = ffjson.Unmarshal(buf, &res); err != nil {
		t.Fatalf("Cannot parse reply from %s: %s\n%s",
			path,
			err.Error(),
			buf)
	} else if res.Correlation != vals.Get("correlation") {
		t.Errorf("Reply from %s has correlation %q (expected %q)",
			path,
			res.Correlation,
			vals.Get("correlation"))
	}

	return &res
} // func postForm(t *testing.T, path string, vals url.Values) *objects.Response

func getJSON(t *testing.T, path string, target interface{}) {
	t.Helper()

	var (
		err  error
		buf  []byte
		rply *http.Response
	)

	if rply, err = srv.Client().Get(srv.URL + path); err != nil {
		t.Fatalf("Cannot GET %s: %s", path, err.Error())
	}

	defer rply.Body.Close() // nolint: errcheck

	if buf, err = io.ReadAll(rply.Body); err != nil {
		t.Fatalf("Cannot read reply from %s: %s", path, err.Error())
	} else if err = ffjson.Unmarshal(buf, target); err != nil {
		t.Fatalf("Cannot parse reply from %s: %s\n%s",
			path,
			err.Error(),
			buf)
	}
} // func getJSON(t *testing.T, path string, target interface{})

func TestWebQueue(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var res = postForm(t, "/notification/queue", url.Values{
		"tag":      {"web/drive/test"},
		"title":    {"Blood drive next week"},
		"body":     {"The bus will be at the market square"},
		"priority": {"3"},
		"data":     {`{"site":"market-square"}`},
	})

	if !res.Status {
		t.Fatalf("Queueing over the web failed: %s", res.Message)
	} else if res.Message == "" {
		t.Error("Queueing over the web returned no UUID")
	}

	var st objects.QueueStatus

	getJSON(t, "/queue/status", &st)

	if st.Depth != 1 {
		t.Errorf("Queue depth is %d (expected 1)", st.Depth)
	}
} // func TestWebQueue(t *testing.T)

func TestWebQueueInvalid(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var res = postForm(t, "/notification/queue", url.Values{
		"body": {"no title, no tag"},
	})

	if res.Status {
		t.Error("Queueing a Notification without Title and Tag should have failed")
	}
} // func TestWebQueueInvalid(t *testing.T)

func TestWebEvents(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var ev objects.EventFlags

	getJSON(t, "/events", &ev)

	if !ev.QueueDepthChanged {
		t.Error("QueueDepthChanged event was not raised")
	} else if ev.Depth != 1 {
		t.Errorf("Event snapshot shows depth %d (expected 1)", ev.Depth)
	}

	// Flags coalesce and clear on fetch.
	getJSON(t, "/events", &ev)

	if ev.QueueDepthChanged {
		t.Error("QueueDepthChanged event was not cleared by the fetch")
	}
} // func TestWebEvents(t *testing.T)

func TestWebBadge(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var res = postForm(t, "/badge/clear", url.Values{})

	if !res.Status {
		t.Fatalf("Clearing the badge over the web failed: %s", res.Message)
	}

	var cnt objects.Response

	getJSON(t, "/badge", &cnt)

	if !cnt.Status {
		t.Fatalf("Reading the badge over the web failed: %s", cnt.Message)
	} else if cnt.Message != "0" {
		t.Errorf("Badge is %q (expected \"0\")", cnt.Message)
	}
} // func TestWebBadge(t *testing.T)

func TestWebCapabilities(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var caps objects.Capabilities

	getJSON(t, "/capabilities", &caps)

	if caps.CriticalAlerts {
		t.Error("Capabilities report critical alerts, they were disabled")
	}
} // func TestWebCapabilities(t *testing.T)

func TestWebVisibility(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var res = postForm(t, "/visibility", url.Values{
		"foreground": {"false"},
	})

	if !res.Status {
		t.Fatalf("Clearing visibility over the web failed: %s", res.Message)
	} else if back.isForeground() {
		t.Error("Daemon still believes a client is in the foreground")
	}

	srv.Close()
} // func TestWebVisibility(t *testing.T)
