package router

import (
	"context"
	"time"

	"grifopos/internal/config"
	"grifopos/internal/handler"
	"grifopos/internal/middleware"
	"grifopos/internal/model"
	"grifopos/internal/repository"
	"grifopos/internal/service"
	"grifopos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, topologia model.Topologia) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origenes()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimit, time.Minute)) // per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	turnoRepo := repository.NewTurnoRepository(db)
	reporteRepo := repository.NewReporteRepository(db)
	precioRepo := repository.NewPrecioRepository(db, rdb, time.Duration(cfg.PrecioCacheTTLMin)*time.Minute)
	sesionRepo := repository.NewSesionRepository(rdb, time.Duration(cfg.SesionTTLHoras)*time.Hour)
	balanceCache := repository.NewBalanceCache(rdb, time.Duration(cfg.BalanceTTLHoras)*time.Hour)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	turnoSvc := service.NewTurnoService(turnoRepo, precioRepo, balanceCache, topologia, dispatcher)
	verificacionSvc := service.NewVerificacionService(turnoRepo, reporteRepo, precioRepo, sesionRepo, balanceCache, dispatcher)
	reporteSvc := service.NewReporteService(reporteRepo, turnoRepo, precioRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	turnosH := handler.NewTurnosHandler(turnoSvc)
	verificacionesH := handler.NewVerificacionesHandler(verificacionSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	catalogoH := handler.NewCatalogoHandler(topologia, precioRepo)
	adminH := handler.NewAdminHandler(rdb)
	healthH := handler.NewHealthHandler(
		len(topologia.Islas),
		func(ctx context.Context) (int64, error) { return worker.DLQLength(ctx, rdb, worker.QueueBalance) },
		handler.ChequeoPostgres(db),
		handler.ChequeoRedis(rdb),
	)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", healthH.Get)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret, cfg.JWTIssuer)
	todos := middleware.RequireRole(middleware.RolTrabajador, middleware.RolAdministrador)
	admin := middleware.RequireRole(middleware.RolAdministrador)

	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/islas", todos, catalogoH.Islas)
		v1.GET("/precios", todos, catalogoH.Precios)

		turnos := v1.Group("/turnos", todos)
		{
			turnos.POST("", turnosH.Abrir)
			turnos.GET("", turnosH.Listar)
			turnos.GET("/:id", turnosH.Obtener)
			turnos.GET("/:id/balance", turnosH.Balance)
			turnos.PATCH("/:id/medidores", turnosH.Medidores)
			turnos.PUT("/:id/entregas", turnosH.Entregas)
			turnos.POST("/:id/items/:categoria", turnosH.AgregarItem)
			turnos.DELETE("/:id/items/:categoria/:item_id", turnosH.EliminarItem)
			turnos.POST("/:id/cerrar", turnosH.Cerrar)
		}

		verif := v1.Group("/verificaciones", admin)
		{
			verif.POST("/turnos/:turno_id", verificacionesH.IniciarTurno)
			verif.POST("/dias/:fecha", verificacionesH.IniciarDia)
			verif.GET("/:id", verificacionesH.Obtener)
			verif.DELETE("/:id", verificacionesH.Descartar)
			verif.POST("/:id/items/:item_id/alternar", verificacionesH.Alternar)
			verif.PATCH("/:id/items/:item_id", verificacionesH.Corregir)
			verif.POST("/:id/verificar-todo", verificacionesH.VerificarTodo)
			verif.PUT("/:id/medidores", verificacionesH.EditarMedidor)
			verif.PUT("/:id/gastos", verificacionesH.Gastos)
			verif.PUT("/:id/entregas", verificacionesH.Entregas)
			verif.PUT("/:id/efectivo", verificacionesH.Efectivo)
			verif.PUT("/:id/notas", verificacionesH.Notas)
			verif.POST("/:id/guardar", verificacionesH.Guardar)
		}

		reportes := v1.Group("/reportes", admin)
		{
			reportes.GET("", reportesH.Listar)
			reportes.GET("/:id", reportesH.Obtener)
		}
		v1.GET("/dias/:fecha/resumen", admin, reportesH.ResumenDia)

		adm := v1.Group("/admin", admin)
		{
			adm.GET("/dlq", adminH.ListarDLQ)
			adm.POST("/dlq/reencolar", adminH.ReencolarDLQ)
		}
	}

	// Swagger UI outside production; handlers carry the swag annotations
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
