// Package metrics registers the prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	roomsActive       prometheus.Gauge
	connectionsActive prometheus.Gauge
	eventsTotal       *prometheus.CounterVec
	broadcastsTotal   prometheus.Counter
	droppedTotal      *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		roomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "syncroom_rooms_active",
			Help: "Number of rooms currently registered",
		}),
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "syncroom_connections_active",
			Help: "Number of open websocket connections",
		}),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "syncroom_events_total",
			Help: "Inbound events handled, by event type",
		}, []string{"event"}),
		broadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "syncroom_broadcasts_total",
			Help: "Room broadcasts fanned out",
		}),
		droppedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "syncroom_events_dropped_total",
			Help: "Events dropped by validation or authorization, by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) RoomCreated()  { m.roomsActive.Inc() }
func (m *Metrics) RoomDeleted()  { m.roomsActive.Dec() }
func (m *Metrics) Connected()    { m.connectionsActive.Inc() }
func (m *Metrics) Disconnected() { m.connectionsActive.Dec() }
func (m *Metrics) Broadcast()    { m.broadcastsTotal.Inc() }

func (m *Metrics) EventHandled(event string)  { m.eventsTotal.WithLabelValues(event).Inc() }
func (m *Metrics) EventDropped(reason string) { m.droppedTotal.WithLabelValues(reason).Inc() }
