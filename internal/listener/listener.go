// Package listener provides a Postgres LISTEN/NOTIFY consumer for snapshot
// refresh requests. It holds a dedicated pgx connection (not from the pool)
// listening on the `snapshot_refresh` channel.
//
// Every API instance listens; `fplopt refresh` (or any SQL client running
// pg_notify) publishes once after a deadline passes or prices change, and
// each instance reloads its gameweek snapshot.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Channel is the notification channel refresh requests are published on.
const Channel = "snapshot_refresh"

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// RefreshEvent is the JSON payload of pg_notify('snapshot_refresh', ...). An
// empty payload is a refresh with no details.
type RefreshEvent struct {
	Reason    string `json:"reason,omitempty"`
	Gameweek  int    `json:"gameweek,omitempty"`
	Timestamp int64  `json:"ts,omitempty"`
}

// Handler processes one refresh event. Events are handled one at a time in
// arrival order.
type Handler func(ctx context.Context, event RefreshEvent)

// Execer runs a statement. *pgx.Conn and *pgxpool.Pool satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ParseEvent decodes a notification payload.
func ParseEvent(payload string) (RefreshEvent, error) {
	var event RefreshEvent
	if payload == "" {
		return event, nil
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return RefreshEvent{}, fmt.Errorf("parse refresh event: %w", err)
	}
	return event, nil
}

// Notify publishes a refresh event on Channel.
func Notify(ctx context.Context, db Execer, event RefreshEvent) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode refresh event: %w", err)
	}
	if _, err := db.Exec(ctx, "SELECT pg_notify($1, $2)", Channel, string(payload)); err != nil {
		return fmt.Errorf("notify %s: %w", Channel, err)
	}
	return nil
}

// Start opens a dedicated connection and listens on Channel. It reconnects
// automatically on connection loss. Blocks until ctx is cancelled. Intended
// to be called with `go`.
func Start(ctx context.Context, dbURL string, handle Handler, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		listening, err := listenLoop(ctx, dbURL, handle, logger)
		if ctx.Err() != nil {
			logger.Info("Refresh listener stopped (context cancelled)")
			return
		}

		var wait time.Duration
		wait, backoff = retryDelay(backoff, listening)
		logger.Error("Refresh listener disconnected, reconnecting...",
			"error", err, "backoff", wait)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return
		}
	}
}

// retryDelay returns how long to wait before reconnecting and the backoff for
// the attempt after that. A session that got as far as LISTEN starts over
// from the initial backoff.
func retryDelay(backoff time.Duration, listening bool) (wait, next time.Duration) {
	if listening {
		backoff = reconnectBackoff
	}
	return backoff, nextBackoff(backoff)
}

func nextBackoff(d time.Duration) time.Duration {
	return min(d*2, maxReconnect)
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled; listening reports whether LISTEN succeeded.
func listenLoop(ctx context.Context, dbURL string, handle Handler, logger *slog.Logger) (listening bool, err error) {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return false, fmt.Errorf("LISTEN %s: %w", Channel, err)
	}
	logger.Info("Refresh listener connected", "channel", Channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, fmt.Errorf("wait for notification: %w", err)
		}

		event, err := ParseEvent(notification.Payload)
		if err != nil {
			logger.Warn("Failed to parse refresh event",
				"payload", notification.Payload, "error", err)
			continue
		}

		logger.Info("Refresh event received",
			"reason", event.Reason,
			"gameweek", event.Gameweek,
			"sender_pid", notification.PID)
		handle(ctx, event)
	}
}
