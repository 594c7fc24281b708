package observability

import (
	"time"

	"github.com/Maiolini/sitecafe/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	pedidosTotal    *prometheus.CounterVec
	cashbackValor   *prometheus.CounterVec
	emailsTotal     *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sitecafe_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitecafe_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
		pedidosTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitecafe_pedidos_total",
				Help: "Total orders registered.",
			},
			[]string{"origem"},
		),
		cashbackValor: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitecafe_cashback_valor_total",
				Help: "Cumulative cashback value in BRL by direction.",
			},
			[]string{"tipo"},
		),
		emailsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitecafe_emails_total",
				Help: "Total e-mails sent by template.",
			},
			[]string{"template", "result"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitecafe_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitecafe_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// IncrPedido increments the order counter. Origem is "manual", "cliente"
// or "automatico".
func (m *Metrics) IncrPedido(origem string) {
	m.pedidosTotal.WithLabelValues(origem).Inc()
}

// AddCashback accumulates cashback value by direction ("ganho" or "uso").
func (m *Metrics) AddCashback(tipo string, valor float64) {
	m.cashbackValor.WithLabelValues(tipo).Add(valor)
}

// IncrEmail increments the e-mail counter for a template with a result
// of "success" or "error".
func (m *Metrics) IncrEmail(template, result string) {
	m.emailsTotal.WithLabelValues(template, result).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// Snapshot returns current counter values for the GET /v1/admin/metrics
// endpoint. Prometheus counters expose cumulative values, so everything
// here is since process start.
func (m *Metrics) Snapshot() *domain.MetricasOperacionais {
	totalRequests := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")
	errorCount := getCounterValue(m.requestsTotal, "error")

	pedidos := getCounterValue(m.pedidosTotal, "cliente") +
		getCounterValue(m.pedidosTotal, "manual") +
		getCounterValue(m.pedidosTotal, "automatico")

	emails := getCounterValue(m.emailsTotal, "boas_vindas", "success") +
		getCounterValue(m.emailsTotal, "recuperacao_senha", "success")

	cacheHits := getCounterValue(m.cacheHits, "beneficios")
	cacheMisses := getCounterValue(m.cacheMisses, "beneficios")

	errorRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.MetricasOperacionais{
		TotalRequisicoes:  int64(totalRequests),
		TaxaErro:          errorRate,
		PedidosCriados:    int64(pedidos),
		CashbackCreditado: getCounterValue(m.cashbackValor, "ganho"),
		CashbackResgatado: getCounterValue(m.cashbackValor, "uso"),
		EmailsEnviados:    int64(emails),
		TaxaAcertoCache:   cacheHitRate,
		Periodo:           "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
