package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_total",
		Help: "Total number of inbound webhook deliveries by outcome",
	}, []string{"outcome"})

	WebhookEventsAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_accepted_total",
		Help: "Total number of webhook events persisted for processing",
	})

	WebhookEventsDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webhook_events_duplicate_total",
		Help: "Total number of redelivered webhook events skipped by dedup",
	})

	EventsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_processed_total",
		Help: "Total number of webhook events processed by terminal outcome",
	}, []string{"outcome"})

	StockMovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Total number of stock movements written by movement type",
	}, []string{"type"})

	UnmatchedItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unmatched_sold_items_total",
		Help: "Total number of sold items with no matching recipe or inventory item",
	})

	UnitConversionFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "unit_conversion_fallbacks_total",
		Help: "Total number of deductions applied with an unconverted quantity",
	})

	OrderLookupLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clover_order_lookup_latency_seconds",
		Help:    "Latency of order line-item lookups against Clover",
		Buckets: prometheus.DefBuckets,
	})

	LedgerApplyLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_apply_latency_seconds",
		Help:    "Latency of stock delta applications",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
