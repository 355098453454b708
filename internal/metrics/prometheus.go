// Package metrics exports directive and map render telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-cms-maps/pkg/interfaces"
)

// Prometheus records shortcode and map render metrics.
type Prometheus struct {
	renderDuration *prometheus.HistogramVec
	renderErrors   *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec
	mapsRendered   *prometheus.CounterVec
	mapErrors      *prometheus.CounterVec
	mapElements    *prometheus.HistogramVec
	commands       *prometheus.HistogramVec
}

// NewPrometheus registers the collectors on reg, reusing collectors that are
// already registered under the same names.
func NewPrometheus(namespace, subsystem string, reg prometheus.Registerer) (*Prometheus, error) {
	if namespace == "" {
		namespace = "maps"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "shortcode_duration_seconds",
			Help:      "Latency of directive renders.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"shortcode"}),
		renderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "shortcode_errors_total",
			Help:      "Count of failed directive renders.",
		}, []string{"shortcode"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "shortcode_cache_hits_total",
			Help:      "Count of directive renders served from cache.",
		}, []string{"shortcode"}),
		mapsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "maps_total",
			Help:      "Count of maps rendered per mapping service.",
		}, []string{"service"}),
		mapErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "map_errors_total",
			Help:      "Count of failed map renders per mapping service.",
		}, []string{"service"}),
		mapElements: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "map_elements",
			Help:      "Markers and shapes per rendered map.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
		}, []string{"service"}),
		commands: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "command_duration_seconds",
			Help:      "Latency of render commands by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command", "outcome"}),
	}

	var err error
	if p.renderDuration, err = register(reg, p.renderDuration); err != nil {
		return nil, err
	}
	if p.renderErrors, err = register(reg, p.renderErrors); err != nil {
		return nil, err
	}
	if p.cacheHits, err = register(reg, p.cacheHits); err != nil {
		return nil, err
	}
	if p.mapsRendered, err = register(reg, p.mapsRendered); err != nil {
		return nil, err
	}
	if p.mapErrors, err = register(reg, p.mapErrors); err != nil {
		return nil, err
	}
	if p.mapElements, err = register(reg, p.mapElements); err != nil {
		return nil, err
	}
	if p.commands, err = register(reg, p.commands); err != nil {
		return nil, err
	}
	return p, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return collector, fmt.Errorf("register map metric: %w", err)
	}
	return collector, nil
}

func (p *Prometheus) ObserveRenderDuration(shortcode string, duration time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(shortcode).Observe(duration.Seconds())
}

func (p *Prometheus) IncrementRenderError(shortcode string) {
	if p == nil {
		return
	}
	p.renderErrors.WithLabelValues(shortcode).Inc()
}

func (p *Prometheus) IncrementCacheHit(shortcode string) {
	if p == nil {
		return
	}
	p.cacheHits.WithLabelValues(shortcode).Inc()
}

// ObserveMap records a rendered map and its element count.
func (p *Prometheus) ObserveMap(service string, elements int) {
	if p == nil {
		return
	}
	p.mapsRendered.WithLabelValues(service).Inc()
	p.mapElements.WithLabelValues(service).Observe(float64(elements))
}

// IncrementMapError records a failed map render.
func (p *Prometheus) IncrementMapError(service string) {
	if p == nil {
		return
	}
	p.mapErrors.WithLabelValues(service).Inc()
}

// ObserveCommand records a finished render command.
func (p *Prometheus) ObserveCommand(command, outcome string, duration time.Duration) {
	if p == nil {
		return
	}
	p.commands.WithLabelValues(command, outcome).Observe(duration.Seconds())
}

var _ interfaces.ShortcodeMetrics = (*Prometheus)(nil)
