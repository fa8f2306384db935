package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal - общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration - длительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Длительность HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RequestsInFlight - количество запросов в обработке
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Текущее количество запросов в обработке",
		},
	)

	// CyclesStartedTotal - количество запущенных циклов
	CyclesStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleet_cycles_started_total",
			Help: "Общее количество запущенных циклов",
		},
	)

	// CyclesCompletedTotal - количество завершенных циклов
	CyclesCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleet_cycles_completed_total",
			Help: "Общее количество завершенных циклов",
		},
	)

	// CyclesCancelledTotal - количество отмененных циклов
	CyclesCancelledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleet_cycles_cancelled_total",
			Help: "Общее количество отмененных циклов",
		},
	)

	// CycleEarningsTotal - суммарный начисленный заработок
	CycleEarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleet_cycle_earnings_total",
			Help: "Суммарный заработок по завершенным циклам",
		},
	)

	// CycleDuration - длительность завершенных циклов
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleet_cycle_duration_minutes",
			Help:    "Длительность завершенных циклов в минутах",
			Buckets: []float64{15, 30, 45, 55, 60, 90, 120, 180},
		},
	)
)

// PrometheusMiddleware собирает метрики для HTTP запросов
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Увеличиваем счетчик запросов в обработке
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()

		// Фиксируем время начала запроса
		start := time.Now()

		// Обрабатываем запрос
		c.Next()

		// Вычисляем длительность запроса
		duration := time.Since(start).Seconds()

		// Получаем статус код и эндпоинт
		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}
