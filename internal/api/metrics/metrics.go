// Package metrics defines and registers all custom Prometheus metrics for
// the threadly API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry via promauto at
// package init; the echoprometheus handler exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "threadly"

// ── Chat metrics ──────────────────────────────────────────────────────────────

// ChatsCreatedTotal counts newly created chats.
var ChatsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chats_created_total",
		Help:      "Total number of chats created.",
	},
)

// MessagesCreatedTotal counts message documents written to the store.
var MessagesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_created_total",
		Help:      "Total number of message documents created.",
	},
)

// ChatUpdatesBroadcastTotal counts realtime chat updates handed to the hub.
// Label:
//   - type: "created" or "newMessage" or "newParticipant"
var ChatUpdatesBroadcastTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_updates_broadcast_total",
		Help:      "Total number of chatUpdate events broadcast, by update type.",
	},
	[]string{"type"},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// WSConnections tracks the number of currently connected websocket clients.
var WSConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Current number of open websocket connections.",
	},
)

// ── Game metrics ──────────────────────────────────────────────────────────────

// GameMovesTotal counts move attempts on embedded games.
// Label:
//   - result: "accepted" or "rejected"
var GameMovesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "game_moves_total",
		Help:      "Total number of game moves, by validation result.",
	},
	[]string{"result"},
)
