// /home/krylon/go/src/github.com/blicero/asclepius/database/initqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-03 18:10:34 krylon>

package database

var initQueries = []string{
	`
CREATE TABLE notification (
    id         INTEGER PRIMARY KEY,
    uuid       TEXT UNIQUE NOT NULL,
    tag        TEXT NOT NULL,
    priority   INTEGER NOT NULL DEFAULT 3,
    title      TEXT NOT NULL,
    body       TEXT NOT NULL DEFAULT '',
    icon       TEXT NOT NULL DEFAULT '',
    data       TEXT NOT NULL DEFAULT '{}',
    need_reply INTEGER NOT NULL DEFAULT 0,
    status     INTEGER NOT NULL DEFAULT 0,
    reason     TEXT NOT NULL DEFAULT '',
    created    INTEGER NOT NULL,
    delivered  INTEGER NOT NULL DEFAULT 0,
    changed    INTEGER NOT NULL,
    CHECK (priority BETWEEN 1 AND 3),
    CHECK (status BETWEEN 0 AND 3)
)
`,
	"CREATE INDEX notification_queue_idx ON notification (status, priority, created)",
	"CREATE INDEX notification_tag_idx ON notification (tag)",
	// The invariant: at most one live entry per tag.
	"CREATE UNIQUE INDEX notification_tag_live_idx ON notification (tag) WHERE status < 2",
	`
CREATE TABLE response (
    id           INTEGER PRIMARY KEY,
    uuid         TEXT UNIQUE NOT NULL,
    request_uuid TEXT NOT NULL,
    donor        TEXT NOT NULL,
    action       INTEGER NOT NULL,
    reason       TEXT NOT NULL DEFAULT '',
    timestamp    INTEGER NOT NULL,
    sync_status  INTEGER NOT NULL DEFAULT 0,
    attempts     INTEGER NOT NULL DEFAULT 0,
    last_error   TEXT NOT NULL DEFAULT '',
    CHECK (sync_status BETWEEN 0 AND 2),
    CHECK (attempts >= 0)
)
`,
	"CREATE INDEX response_sync_idx ON response (sync_status, timestamp)",
	`
CREATE TABLE badge (
    id  INTEGER PRIMARY KEY,
    cnt INTEGER NOT NULL DEFAULT 0,
    CHECK (id = 1),
    CHECK (cnt >= 0)
)
`,
	"INSERT INTO badge (id, cnt) VALUES (1, 0)",
}
