package metrics

import (
	"net/http"

	"github.com/FinBoard/finboard-gateway/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the process metrics and its own registry, so tests can
// build isolated instances without clashing on the global default.
type Recorder struct {
	reg *prometheus.Registry

	eventsEmitted     *prometheus.CounterVec
	emissionsRejected *prometheus.CounterVec
	conversions       *prometheus.CounterVec
	uploads           prometheus.Counter
	wsClients         prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		eventsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finboard_events_emitted_total",
			Help: "Completed event bus emissions by topic.",
		}, []string{"topic"}),
		emissionsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finboard_events_reentrant_rejections_total",
			Help: "Emit calls rejected because the topic was mid-emission.",
		}, []string{"topic"}),
		conversions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "finboard_conversions_total",
			Help: "Currency conversion requests by outcome.",
		}, []string{"outcome"}),
		uploads: f.NewCounter(prometheus.CounterOpts{
			Name: "finboard_uploads_total",
			Help: "Files accepted into the upload store.",
		}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "finboard_ws_clients",
			Help: "Currently connected websocket event clients.",
		}),
	}
}

// Handler serves this recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// EventEmitted and EmissionRejected satisfy events.Metrics.
func (r *Recorder) EventEmitted(topic events.Topic) {
	r.eventsEmitted.WithLabelValues(string(topic)).Inc()
}

func (r *Recorder) EmissionRejected(topic events.Topic) {
	r.emissionsRejected.WithLabelValues(string(topic)).Inc()
}

func (r *Recorder) ConversionServed(outcome string) {
	r.conversions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) UploadStored() { r.uploads.Inc() }

func (r *Recorder) WSClientConnected()    { r.wsClients.Inc() }
func (r *Recorder) WSClientDisconnected() { r.wsClients.Dec() }
