//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"grifopos/internal/config"
	"grifopos/internal/infra"
	"grifopos/internal/middleware"
	"grifopos/internal/model"
	"grifopos/internal/repository"
	"grifopos/internal/router"
	"grifopos/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

const jwtSecret = "e2e-secret"

var topologia = model.Topologia{Islas: []model.Isla{
	{ID: "isla-1", Caras: []model.Cara{
		{Nombre: "A", Surtidores: []model.Surtidor{{Codigo: "1", Producto: "REGULAR"}, {Codigo: "2", Producto: "DIESEL"}}},
	}},
	{ID: "isla-2", Caras: []model.Cara{
		{Nombre: "A", Surtidores: []model.Surtidor{{Codigo: "1", Producto: "REGULAR"}}},
	}},
}}

type testEnv struct {
	server     *httptest.Server
	rdb        *redis.Client
	trabajador string
	admin      string
}

func mint(t *testing.T, rol string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.JWTClaims{
		UserID: rol + "-e2e",
		Nombre: rol,
		Rol:    rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("grifo_test"),
		tcPostgres.WithUsername("grifo"),
		tcPostgres.WithPassword("grifo"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:              8000,
		Env:               "test",
		JWTSecret:         jwtSecret,
		DatabaseURL:       pgURL,
		RedisURL:          rdURL,
		WorkerPoolSize:    1,
		CORSOrigins:       "*",
		RateLimit:         1000,
		SesionTTLHoras:    1,
		PrecioCacheTTLMin: 5,
		BalanceTTLHoras:   1,
	}

	require.NoError(t, cfg.Validate())

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	// migrations are idempotent
	require.NoError(t, infra.RunMigrations(db))

	rdb, err := infra.NewRedis(cfg.RedisURL, cfg.WorkerPoolSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	precios := repository.NewPrecioRepository(db, rdb, time.Minute)
	for producto, valor := range map[string]string{"REGULAR": "10", "DIESEL": "12"} {
		require.NoError(t, precios.Upsert(ctx, &model.Precio{Producto: producto, Valor: decimal.RequireFromString(valor)}))
	}

	srv := httptest.NewServer(router.New(cfg, db, rdb, topologia))
	t.Cleanup(srv.Close)

	return &testEnv{
		server:     srv,
		rdb:        rdb,
		trabajador: mint(t, middleware.RolTrabajador),
		admin:      mint(t, middleware.RolAdministrador),
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func expect(t *testing.T, resp *http.Response, status int, dest any) {
	t.Helper()
	if dest == nil {
		defer resp.Body.Close()
		require.Equal(t, status, resp.StatusCode)
		return
	}
	require.Equal(t, status, resp.StatusCode)
	decodeJSON(t, resp, dest)
}

type turnoResp struct {
	ID        string `json:"id"`
	Secuencia int64  `json:"secuencia"`
	Estado    string `json:"estado"`
	Medidores []struct {
		Clave  string  `json:"clave"`
		Inicio string  `json:"inicio"`
		Fin    *string `json:"fin"`
	} `json:"medidores"`
	HayArrastre bool `json:"hay_arrastre"`
}

func (e *testEnv) cerrarTurno(t *testing.T, isla, nombre string, lecturas map[string]string, entrega string) turnoResp {
	t.Helper()
	var turno turnoResp
	expect(t, e.do(t, "POST", "/v1/turnos", map[string]any{
		"isla_id": isla, "trabajador": "Rosa", "fecha": "2026-03-01", "nombre_turno": nombre,
	}, e.trabajador), http.StatusCreated, &turno)

	expect(t, e.do(t, "PATCH", "/v1/turnos/"+turno.ID+"/medidores", map[string]any{"medidores": lecturas}, e.trabajador), http.StatusOK, nil)
	expect(t, e.do(t, "PUT", "/v1/turnos/"+turno.ID+"/entregas", map[string]any{"entregas": []string{entrega}}, e.trabajador), http.StatusOK, nil)
	expect(t, e.do(t, "POST", "/v1/turnos/"+turno.ID+"/cerrar", nil, e.trabajador), http.StatusOK, &turno)
	require.Equal(t, model.EstadoCerrado, turno.Estado)
	return turno
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_RutasProtegidas(t *testing.T) {
	env := setupTestEnv(t)

	expect(t, env.do(t, "GET", "/health", nil, ""), http.StatusOK, nil)
	expect(t, env.do(t, "GET", "/v1/turnos", nil, ""), http.StatusUnauthorized, nil)
	expect(t, env.do(t, "GET", "/v1/reportes", nil, env.trabajador), http.StatusForbidden, nil)
	expect(t, env.do(t, "GET", "/v1/reportes", nil, env.admin), http.StatusOK, nil)

	resp := env.do(t, "GET", "/metrics", nil, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Full shift cycle: open, sell, close, audit, save, day summary.
func TestE2E_CicloCompleto(t *testing.T) {
	env := setupTestEnv(t)

	// 1. Morning shift: 20 gal REGULAR (200), one card payment of 50
	var manana turnoResp
	expect(t, env.do(t, "POST", "/v1/turnos", map[string]any{
		"isla_id": "isla-1", "trabajador": "Rosa", "fecha": "2026-03-01", "nombre_turno": "Mañana",
	}, env.trabajador), http.StatusCreated, &manana)
	assert.False(t, manana.HayArrastre)

	expect(t, env.do(t, "PATCH", "/v1/turnos/"+manana.ID+"/medidores",
		map[string]any{"medidores": map[string]string{"A-1": "20", "A-2": "0"}}, env.trabajador), http.StatusOK, nil)
	expect(t, env.do(t, "POST", "/v1/turnos/"+manana.ID+"/items/pagos",
		map[string]any{"metodo": "tarjeta", "monto": "50", "referencia": "VISA-1"}, env.trabajador), http.StatusCreated, nil)
	expect(t, env.do(t, "PUT", "/v1/turnos/"+manana.ID+"/entregas",
		map[string]any{"entregas": []string{"100", "40"}}, env.trabajador), http.StatusOK, nil)

	// a second open shift on the same island is rejected by the partial index
	expect(t, env.do(t, "POST", "/v1/turnos", map[string]any{
		"isla_id": "isla-1", "trabajador": "Luis", "fecha": "2026-03-01", "nombre_turno": "Tarde",
	}, env.trabajador), http.StatusConflict, nil)

	expect(t, env.do(t, "POST", "/v1/turnos/"+manana.ID+"/cerrar", nil, env.trabajador), http.StatusOK, &manana)

	var bal struct {
		TotalVentas string `json:"total_ventas"`
		Diferencia  string `json:"diferencia"`
		Estado      string `json:"estado"`
	}
	expect(t, env.do(t, "GET", "/v1/turnos/"+manana.ID+"/balance", nil, env.trabajador), http.StatusOK, &bal)
	assert.Equal(t, "200", bal.TotalVentas)
	assert.Equal(t, "-10", bal.Diferencia)

	// 2. Afternoon shift carries the morning's end readings
	var tarde turnoResp
	expect(t, env.do(t, "POST", "/v1/turnos", map[string]any{
		"isla_id": "isla-1", "trabajador": "Luis", "fecha": "2026-03-01", "nombre_turno": "Tarde",
	}, env.trabajador), http.StatusCreated, &tarde)
	assert.True(t, tarde.HayArrastre)
	assert.Greater(t, tarde.Secuencia, manana.Secuencia)
	for _, m := range tarde.Medidores {
		if m.Clave == "A-1" {
			assert.Equal(t, "20", m.Inicio)
		}
	}

	// the day cannot be audited while the afternoon is open
	expect(t, env.do(t, "POST", "/v1/verificaciones/dias/2026-03-01", nil, env.admin), http.StatusConflict, nil)

	// 3. Audit the morning shift: correct the meter and the cash delivered
	var sesion struct {
		ID    string `json:"id"`
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	expect(t, env.do(t, "POST", "/v1/verificaciones/turnos/"+manana.ID, nil, env.admin), http.StatusCreated, &sesion)
	require.NotEmpty(t, sesion.Items)

	expect(t, env.do(t, "POST", "/v1/verificaciones/"+sesion.ID+"/items/"+sesion.Items[0].ID+"/alternar", nil, env.admin), http.StatusOK, nil)
	expect(t, env.do(t, "PUT", "/v1/verificaciones/"+sesion.ID+"/medidores",
		map[string]any{"clave": "A-1", "fin": "21"}, env.admin), http.StatusOK, nil)
	expect(t, env.do(t, "PUT", "/v1/verificaciones/"+sesion.ID+"/efectivo",
		map[string]any{"monto": "150"}, env.admin), http.StatusOK, nil)

	var reporte struct {
		ID        string `json:"id"`
		Tipo      string `json:"tipo"`
		Corregido bool   `json:"corregido"`
	}
	expect(t, env.do(t, "POST", "/v1/verificaciones/"+sesion.ID+"/guardar", nil, env.admin), http.StatusOK, &reporte)
	assert.Equal(t, model.ReporteTurno, reporte.Tipo)
	assert.True(t, reporte.Corregido)

	// corrections are written back to the shift and the cached balance dropped
	var corregido turnoResp
	expect(t, env.do(t, "GET", "/v1/turnos/"+manana.ID, nil, env.trabajador), http.StatusOK, &corregido)
	for _, m := range corregido.Medidores {
		if m.Clave == "A-1" {
			require.NotNil(t, m.Fin)
			assert.Equal(t, "21", *m.Fin)
		}
	}
	expect(t, env.do(t, "GET", "/v1/turnos/"+manana.ID+"/balance", nil, env.trabajador), http.StatusOK, &bal)
	assert.Equal(t, "210", bal.TotalVentas)

	// the balance job was queued for the worker pool
	n, err := env.rdb.LLen(context.Background(), worker.QueueBalance).Result()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	// 4. Close the afternoon and audit the whole day
	expect(t, env.do(t, "PATCH", "/v1/turnos/"+tarde.ID+"/medidores",
		map[string]any{"medidores": map[string]string{"A-1": "30", "A-2": "1"}}, env.trabajador), http.StatusOK, nil)
	expect(t, env.do(t, "POST", "/v1/turnos/"+tarde.ID+"/cerrar", nil, env.trabajador), http.StatusOK, nil)
	env.cerrarTurno(t, "isla-2", "Mañana", map[string]string{"A-1": "5"}, "50")

	var dia struct {
		ID     string `json:"id"`
		Tipo   string `json:"tipo"`
		Turnos []any  `json:"turnos"`
	}
	expect(t, env.do(t, "POST", "/v1/verificaciones/dias/2026-03-01", nil, env.admin), http.StatusCreated, &dia)
	assert.Equal(t, model.ReporteDia, dia.Tipo)
	assert.Len(t, dia.Turnos, 3)

	expect(t, env.do(t, "PUT", "/v1/verificaciones/"+dia.ID+"/efectivo",
		map[string]any{"grupo": "Mañana", "monto": "200"}, env.admin), http.StatusOK, nil)
	expect(t, env.do(t, "POST", "/v1/verificaciones/"+dia.ID+"/guardar", nil, env.admin), http.StatusOK, &reporte)
	assert.Equal(t, model.ReporteDia, reporte.Tipo)

	var resumen map[string]any
	expect(t, env.do(t, "GET", "/v1/dias/2026-03-01/resumen", nil, env.admin), http.StatusOK, &resumen)
	assert.NotEmpty(t, resumen)

	var reportes []map[string]any
	expect(t, env.do(t, "GET", "/v1/reportes?fecha=2026-03-01", nil, env.admin), http.StatusOK, &reportes)
	assert.Len(t, reportes, 2)
}
