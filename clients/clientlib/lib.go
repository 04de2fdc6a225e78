// /home/krylon/go/src/github.com/blicero/asclepius/clients/clientlib/lib.go
// -*- mode: go; coding: utf-8; -*-
// Created on 22. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-08 20:29:41 krylon>

// Package clientlib provides the basic framework for building clients
// that talk to the backend Daemon: producers queueing notifications,
// and frontends rendering the queue, the badge, and recording the
// donor's responses.
package clientlib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/blicero/asclepius/common"
	"github.com/blicero/asclepius/logdomain"
	"github.com/blicero/asclepius/objects"
	"github.com/pquerna/ffjson/ffjson"
)

const (
	queuePath      = "/notification/queue"
	statusPath     = "/queue/status"
	recordPath     = "/response/record"
	syncPath       = "/responses/sync"
	badgePath      = "/badge"
	badgeClearPath = "/badge/clear"
	visibilityPath = "/visibility"
	eventsPath     = "/events"
	capsPath       = "/capabilities"
)

// Client implements the communication with the backend Daemon.
type Client struct {
	Server *url.URL
	Client http.Client
	log    *log.Logger
}

// NewClient creates a new Client talking to the Daemon at srv.
func NewClient(srv string) (*Client, error) {
	var (
		err error
		c   = &Client{
			Client: http.Client{
				Timeout: time.Second * 10,
			},
		}
	)

	if c.log, err = common.GetLogger(logdomain.Client); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot create Logger: %s\n",
			err.Error())
		return nil, err
	} else if c.Server, err = url.Parse(srv); err != nil {
		c.log.Printf("[ERROR] Cannot parse URL %q: %s\n",
			srv,
			err.Error())
		return nil, err
	}

	c.Server.Scheme = "http"

	return c, nil
} // func NewClient(srv string) (*Client, error)

// GetLogger returns the Client's logger, so applications built on the
// Client do not have to create their own.
func (c *Client) GetLogger() *log.Logger {
	return c.log
} // func (c *Client) GetLogger() *log.Logger

func (c *Client) pathURL(path string) string {
	var u = *c.Server
	u.Path = path
	return u.String()
} // func (c *Client) pathURL(path string) string

// postForm POSTs values to the given path and parses the Daemon's
// Response envelope. Every request carries a fresh correlation ID; if
// the reply comes back with a different one, something is seriously
// confused on the other end.
func (c *Client) postForm(path string, values url.Values) (*objects.Response, error) {
	var (
		err    error
		msg    string
		corr   = common.GetUUID()
		rcvBuf bytes.Buffer
		hres   *http.Response
		ores   objects.Response
		addr   = c.pathURL(path)
	)

	values.Set("correlation", corr)

	if hres, err = c.Client.PostForm(addr, values); err != nil {
		c.log.Printf("[ERROR] Failed to POST to %s: %s\n",
			addr,
			err.Error())
		return nil, err
	}

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		msg = fmt.Sprintf("Unexpected status from %s: %s",
			addr,
			hres.Status)
		c.log.Printf("[ERROR] %s\n", msg)
		return nil, errors.New(msg)
	} else if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read Response body from %s: %s\n",
			addr,
			err.Error())
		return nil, err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), &ores); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize Response from %s: %s\n",
			addr,
			err.Error())
		return nil, err
	} else if ores.Correlation != corr {
		msg = fmt.Sprintf("Response from %s has correlation %q (expected %q)",
			addr,
			ores.Correlation,
			corr)
		c.log.Printf("[ERROR] %s\n", msg)
		return nil, errors.New(msg)
	} else if !ores.Status {
		err = fmt.Errorf("Request to %s failed: %s",
			addr,
			ores.Message)
		c.log.Printf("[ERROR] %s\n",
			err.Error())
		return &ores, err
	}

	return &ores, nil
} // func (c *Client) postForm(path string, values url.Values) (*objects.Response, error)

func (c *Client) getJSON(path string, target interface{}) error {
	var (
		err    error
		rcvBuf bytes.Buffer
		hres   *http.Response
		addr   = c.pathURL(path)
	)

	if hres, err = c.Client.Get(addr); err != nil {
		c.log.Printf("[ERROR] Failed to GET %s: %s\n",
			addr,
			err.Error())
		return err
	}

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		var msg = fmt.Sprintf("Unexpected status from %s: %s",
			addr,
			hres.Status)
		c.log.Printf("[ERROR] %s\n", msg)
		return errors.New(msg)
	} else if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read Response body from %s: %s\n",
			addr,
			err.Error())
		return err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), target); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize reply from %s: %s\n",
			addr,
			err.Error())
		return err
	}

	return nil
} // func (c *Client) getJSON(path string, target interface{}) error

// QueueNotification hands a NotificationRequest to the Daemon. The
// UUID the Daemon assigned is returned; queueing the same Tag twice
// replaces the older entry, so the call is safe to retry after a
// timeout.
func (c *Client) QueueNotification(n *objects.NotificationRequest) (string, error) {
	var (
		err    error
		res    *objects.Response
		values = url.Values{
			"tag":      {n.Tag},
			"title":    {n.Title},
			"body":     {n.Body},
			"icon":     {n.Icon},
			"priority": {strconv.Itoa(int(n.Priority))},
		}
	)

	if n.RequiresResponse {
		values.Set("need_reply", "true")
	}

	if len(n.Data) > 0 {
		var buf []byte
		if buf, err = ffjson.Marshal(n.Data); err != nil {
			c.log.Printf("[ERROR] Cannot serialize data payload: %s\n",
				err.Error())
			return "", err
		}
		values.Set("data", string(buf))
	}

	if res, err = c.postForm(queuePath, values); err != nil {
		return "", err
	}

	n.UUID = res.Message
	return res.Message, nil
} // func (c *Client) QueueNotification(n *objects.NotificationRequest) (string, error)

// QueueStatus asks the Daemon for the current depth of the queue.
func (c *Client) QueueStatus() (*objects.QueueStatus, error) {
	var st objects.QueueStatus

	if err := c.getJSON(statusPath, &st); err != nil {
		return nil, err
	}

	return &st, nil
} // func (c *Client) QueueStatus() (*objects.QueueStatus, error)

// RecordResponse records the donor's response with the Daemon, to be
// synced whenever connectivity allows.
func (c *Client) RecordResponse(r *objects.ResponseRecord) error {
	var (
		err    error
		res    *objects.Response
		values = url.Values{
			"request": {r.RequestUUID},
			"donor":   {r.Donor},
			"action":  {r.Action.String()},
			"reason":  {r.Reason},
		}
	)

	if res, err = c.postForm(recordPath, values); err != nil {
		return err
	}

	r.UUID = res.Message
	return nil
} // func (c *Client) RecordResponse(r *objects.ResponseRecord) error

// TriggerSync asks the Daemon to push pending responses to the
// collection server right now instead of waiting for the next cycle.
func (c *Client) TriggerSync() (*objects.SyncResult, error) {
	var (
		err    error
		rcvBuf bytes.Buffer
		hres   *http.Response
		res    objects.SyncResult
		addr   = c.pathURL(syncPath)
	)

	if hres, err = c.Client.Post(addr, "application/x-www-form-urlencoded", nil); err != nil {
		c.log.Printf("[ERROR] Failed to POST to %s: %s\n",
			addr,
			err.Error())
		return nil, err
	}

	defer hres.Body.Close() // nolint: errcheck

	if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		return nil, err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), &res); err != nil {
		return nil, err
	}

	return &res, nil
} // func (c *Client) TriggerSync() (*objects.SyncResult, error)

// BadgeCount asks the Daemon for the unread counter.
func (c *Client) BadgeCount() (int, error) {
	var (
		err error
		cnt int
		res objects.Response
	)

	if err = c.getJSON(badgePath, &res); err != nil {
		return 0, err
	} else if !res.Status {
		return 0, errors.New(res.Message)
	} else if cnt, err = strconv.Atoi(res.Message); err != nil {
		return 0, err
	}

	return cnt, nil
} // func (c *Client) BadgeCount() (int, error)

// BadgeClear resets the unread counter.
func (c *Client) BadgeClear() error {
	var _, err = c.postForm(badgeClearPath, url.Values{})
	return err
} // func (c *Client) BadgeClear() error

// SetVisibility tells the Daemon whether this client is currently
// visible to the donor.
func (c *Client) SetVisibility(foreground bool) error {
	var _, err = c.postForm(visibilityPath, url.Values{
		"foreground": {strconv.FormatBool(foreground)},
	})
	return err
} // func (c *Client) SetVisibility(foreground bool) error

// FetchEvents polls the Daemon for changes since the last poll.
func (c *Client) FetchEvents() (*objects.EventFlags, error) {
	var ev objects.EventFlags

	if err := c.getJSON(eventsPath, &ev); err != nil {
		return nil, err
	}

	return &ev, nil
} // func (c *Client) FetchEvents() (*objects.EventFlags, error)

// Capabilities asks the Daemon what the platform probe found.
func (c *Client) Capabilities() (*objects.Capabilities, error) {
	var caps objects.Capabilities

	if err := c.getJSON(capsPath, &caps); err != nil {
		return nil, err
	}

	return &caps, nil
} // func (c *Client) Capabilities() (*objects.Capabilities, error)

// TitlePrefix renders the unread counter the way a client stuck
// without a launcher badge can still show it: stuck onto the window or
// tray title.
func (c *Client) TitlePrefix() string {
	var cnt, err = c.BadgeCount()

	if err != nil || cnt == 0 {
		return ""
	}

	return fmt.Sprintf("(%d) ", cnt)
} // func (c *Client) TitlePrefix() string
