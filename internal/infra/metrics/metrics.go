// Package metrics defines and registers the portal's custom Prometheus metrics.
// HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pointshop"

// RedemptionsTotal counts redeem calls.
// Label:
//   - outcome: "success" or the decline code (e.g. "OUT_OF_STOCK")
var RedemptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redemptions_total",
		Help:      "Total number of redemption attempts by outcome.",
	},
	[]string{"outcome"},
)

// PointsRedeemedTotal sums points debited by successful redemptions.
var PointsRedeemedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_redeemed_total",
		Help:      "Total points spent on successful redemptions.",
	},
)

// NotificationsTotal counts outbound order notifications.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full or stopped)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of order notifications by delivery result.",
	},
	[]string{"result"},
)

var NotificationQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Number of notifications waiting to be sent.",
	},
)

// OrdersExportedTotal counts rows written by CSV exports.
var OrdersExportedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_exported_total",
		Help:      "Total number of order rows written to CSV exports.",
	},
)
