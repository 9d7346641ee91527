// Package metrics exposes the Prometheus collectors of the service. The
// /metrics route serves them through promhttp.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnosAbiertos = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grifo_turnos_abiertos_total",
		Help: "Turnos abiertos.",
	})

	TurnosCerrados = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grifo_turnos_cerrados_total",
		Help: "Turnos cerrados.",
	})

	// CuadreTurnos counts balances computed at close, by outcome (cuadrado, falta, sobra).
	CuadreTurnos = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grifo_cuadre_turnos_total",
		Help: "Resultado del cuadre de turnos cerrados.",
	}, []string{"estado"})

	ReportesGuardados = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grifo_reportes_verificados_total",
		Help: "Reportes verificados guardados, por tipo.",
	}, []string{"tipo"})

	PreciosFaltantes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "grifo_productos_sin_precio_total",
		Help: "Productos con galones vendidos y sin precio en la tabla.",
	})

	Jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grifo_jobs_total",
		Help: "Jobs procesados por el worker pool, por tipo y resultado.",
	}, []string{"tipo", "resultado"})
)
