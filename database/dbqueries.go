// /home/krylon/go/src/github.com/blicero/asclepius/database/dbqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 04. 2023 by Benjamin Walkenhorst
// (c) 2023 Benjamin Walkenhorst
// Time-stamp: <2023-11-03 18:14:49 krylon>

package database

import "github.com/blicero/asclepius/database/query"

var dbQueries = map[query.ID]string{
	query.NotificationAdd: `
INSERT INTO notification (uuid, tag, priority, title, body, icon, data, need_reply, created, changed)
VALUES                   (   ?,   ?,        ?,     ?,    ?,    ?,    ?,          ?,       ?,       ?)
`,
	// Superseding keeps the created stamp, so the replacement keeps the
	// old entry's place in the FIFO order.
	query.NotificationUpdatePayload: `
UPDATE notification
SET priority = ?, title = ?, body = ?, icon = ?, data = ?, need_reply = ?, changed = ?
WHERE id = ?
`,
	query.NotificationGetByTag: `
SELECT
    id,
    uuid,
    priority,
    title,
    body,
    icon,
    data,
    need_reply,
    status,
    reason,
    created,
    delivered,
    changed
FROM notification
WHERE tag = ? AND status < 2
`,
	query.NotificationGetByID: `
SELECT
    uuid,
    tag,
    priority,
    title,
    body,
    icon,
    data,
    need_reply,
    status,
    reason,
    created,
    delivered,
    changed
FROM notification
WHERE id = ?
`,
	query.NotificationGetByUUID: `
SELECT
    id,
    tag,
    priority,
    title,
    body,
    icon,
    data,
    need_reply,
    status,
    reason,
    created,
    delivered,
    changed
FROM notification
WHERE uuid = ?
`,
	query.NotificationGetNext: `
SELECT
    id,
    uuid,
    tag,
    priority,
    title,
    body,
    icon,
    data,
    need_reply,
    reason,
    created,
    delivered,
    changed
FROM notification
WHERE status = 0
ORDER BY priority, created, id
LIMIT 1
`,
	query.NotificationClaim: `
UPDATE notification
SET status = 1, changed = ?
WHERE id = ? AND status = 0
`,
	query.NotificationQueueDepth: `
SELECT priority, COUNT(*)
FROM notification
WHERE status = 0
GROUP BY priority
`,
	query.NotificationSetDelivered: `
UPDATE notification
SET delivered = ?, changed = ?
WHERE id = ? AND status = 1
`,
	query.NotificationSetActioned: `
UPDATE notification
SET status = 2, changed = ?
WHERE id = ? AND status = 1
`,
	query.NotificationExpire: `
UPDATE notification
SET status = 3, reason = ?, changed = ?
WHERE id = ? AND status < 2
`,
	query.NotificationExpireStale: `
UPDATE notification
SET status = 3, reason = 'stale', changed = ?
WHERE status = 0 AND priority = ? AND created < ?
`,
	query.NotificationPurgeOld: `
DELETE FROM notification
WHERE status >= 2 AND changed < ?
`,
	query.ResponseAdd: `
INSERT INTO response (uuid, request_uuid, donor, action, reason, timestamp)
VALUES               (   ?,            ?,     ?,      ?,      ?,         ?)
`,
	query.ResponseGetByID: `
SELECT
    uuid,
    request_uuid,
    donor,
    action,
    reason,
    timestamp,
    sync_status,
    attempts,
    last_error
FROM response
WHERE id = ?
`,
	// Strictly oldest-first, so a donor's accept is never reported
	// after their later decline on the same request.
	query.ResponseGetPending: `
SELECT
    id,
    uuid,
    request_uuid,
    donor,
    action,
    reason,
    timestamp,
    sync_status,
    attempts,
    last_error
FROM response
WHERE sync_status <> 1 AND attempts < ?
ORDER BY timestamp, id
`,
	query.ResponseGetAbandoned: `
SELECT
    id,
    uuid,
    request_uuid,
    donor,
    action,
    reason,
    timestamp,
    sync_status,
    attempts,
    last_error
FROM response
WHERE sync_status <> 1 AND attempts >= ?
ORDER BY timestamp, id
`,
	query.ResponseMarkSynced: `
UPDATE response
SET sync_status = 1, last_error = ''
WHERE id = ?
`,
	query.ResponseMarkFailed: `
UPDATE response
SET sync_status = 2, attempts = attempts + 1, last_error = ?
WHERE id = ?
`,
	query.ResponsePurgeSynced: `
DELETE FROM response
WHERE sync_status = 1 AND timestamp < ?
`,
	query.BadgeGet: "SELECT cnt FROM badge WHERE id = 1",
	query.BadgeSet: "UPDATE badge SET cnt = ? WHERE id = 1",
}
