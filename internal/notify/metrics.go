package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsflash_notification_tasks_enqueued_total",
		Help: "The total number of notification tasks accepted by the queue",
	}, []string{"type"})

	tasksDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsflash_notification_tasks_dropped_total",
		Help: "The total number of notification tasks dropped before delivery",
	}, []string{"type", "reason"})

	pushesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "newsflash_notification_pushes_total",
		Help: "The total number of device pushes by outcome",
	}, []string{"type", "status"})
)

func observeDelivery(typ string, res Result) {
	pushesProcessed.WithLabelValues(typ, "sent").Add(float64(res.Sent))
	pushesProcessed.WithLabelValues(typ, "failed").Add(float64(res.Failed))
	pushesProcessed.WithLabelValues(typ, "skipped").Add(float64(res.Skipped))
}
