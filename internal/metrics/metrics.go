// Package metrics define las métricas Prometheus del núcleo de identidad.
// Viven en un paquete aparte para que identity, auth y http no se importen entre sí.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idlink_login_attempts_total",
		Help: "Intentos de login con password por resultado",
	}, []string{"result"}) // success | invalid | locked | validation

	LoginLockouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "idlink_login_lockouts_total",
		Help: "Veces que una throttle key alcanzó el umbral",
	})

	Resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idlink_resolutions_total",
		Help: "Resoluciones de identidad federada por outcome",
	}, []string{"outcome"}) // returning | linked | provisioned | failed

	ResolutionConflictRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "idlink_resolution_conflict_retries_total",
		Help: "Reintentos por violación de unicidad durante la resolución",
	})

	Disconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idlink_disconnects_total",
		Help: "Desvinculaciones de provider por resultado",
	}, []string{"result"}) // ok | not_connected | last_method

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "idlink_http_requests_total",
		Help: "Requests HTTP procesadas",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "idlink_http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Register registra las métricas en reg (o el default si es nil).
// Registrar dos veces no es error.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		LoginAttempts, LoginLockouts, Resolutions, ResolutionConflictRetries, Disconnects,
		HTTPRequests, HTTPDuration,
	} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return err
			}
		}
	}
	return nil
}
