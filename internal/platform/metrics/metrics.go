package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	drawRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sorteio_draw_requests_total",
		Help: "Total de requisicoes de sorteio recebidas",
	}, []string{"status"})

	drawDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sorteio_draw_duration_seconds",
		Help:    "Tempo para validar e gravar uma rodada de sorteio",
		Buckets: prometheus.DefBuckets,
	})

	activationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sorteio_activation_requests_total",
		Help: "Total de tentativas de ativacao pelo link publico",
	}, []string{"status"})
)

func ObserveDrawRequest(status string) {
	drawRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveDrawDuration(seconds float64) {
	drawDuration.Observe(seconds)
}

func ObserveActivationRequest(status string) {
	activationRequestsTotal.WithLabelValues(status).Inc()
}
