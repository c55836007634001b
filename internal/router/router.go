package router

import (
	"time"

	"github.com/GUSGUS33/crm-merchandising-sub001/internal/config"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/handler"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/infra"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/middleware"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/repository"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/service"
	"github.com/GUSGUS33/crm-merchandising-sub001/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, notifier *infra.Notifier, webhookCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	presupuestoRepo := repository.NewPresupuestoRepository(db)
	facturaRepo := repository.NewFacturaRepository(db)
	tareaRepo := repository.NewTareaRepository(db)
	mensajeRepo := repository.NewMensajeRepository(db)
	sitioRepo := repository.NewSitioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	clienteSvc := service.NewClienteService(clienteRepo)
	leadSvc := service.NewLeadService(leadRepo, clienteRepo, notifier, webhookCB)
	presupuestoSvc := service.NewPresupuestoService(
		presupuestoRepo, clienteRepo, facturaRepo, mensajeRepo,
		dispatcher, notifier, webhookCB, cfg.PDFStoragePath,
	)
	facturaSvc := service.NewFacturaService(facturaRepo)
	tareaSvc := service.NewTareaService(tareaRepo)
	mensajeSvc := service.NewMensajeService(mensajeRepo, clienteRepo)
	sitioSvc := service.NewSitioService(sitioRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	leadsH := handler.NewLeadsHandler(leadSvc)
	presupuestosH := handler.NewPresupuestosHandler(presupuestoSvc)
	facturasH := handler.NewFacturasHandler(facturaSvc)
	tareasH := handler.NewTareasHandler(tareaSvc)
	mensajesH := handler.NewMensajesHandler(mensajeSvc)
	sitiosH := handler.NewSitiosHandler(sitioSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, webhookCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: comercial, supervisor, administrador — declared per-endpoint
		todos := middleware.RequireRole("comercial", "supervisor", "administrador")
		gestion := middleware.RequireRole("supervisor", "administrador")
		admin := middleware.RequireRole("administrador")

		clientes := v1.Group("/clientes", todos)
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.PATCH("/:id/reactivar", clientesH.Reactivar)
			// Messaging history hangs off the cliente
			clientes.GET("/:id/mensajes", mensajesH.ListarPorCliente)
			clientes.POST("/:id/mensajes", mensajesH.Registrar)
		}
		v1.DELETE("/clientes/:id", gestion, clientesH.Desactivar)

		leads := v1.Group("/leads", todos)
		{
			leads.POST("", leadsH.Crear)
			leads.GET("", leadsH.Listar)
			leads.GET("/:id", leadsH.Obtener)
			leads.PUT("/:id", leadsH.Actualizar)
			leads.POST("/:id/convertir", leadsH.Convertir)
		}
		v1.DELETE("/leads/:id", gestion, leadsH.Eliminar)

		presupuestos := v1.Group("/presupuestos", todos)
		{
			presupuestos.POST("", presupuestosH.Crear)
			presupuestos.GET("", presupuestosH.Listar)
			presupuestos.GET("/:id", presupuestosH.Obtener)
			presupuestos.PUT("/:id", presupuestosH.Actualizar)
			presupuestos.PATCH("/:id/estado", presupuestosH.CambiarEstado)
			presupuestos.POST("/:id/duplicar", presupuestosH.Duplicar)
			presupuestos.GET("/:id/pdf", presupuestosH.DescargarPDF)
			presupuestos.POST("/:id/enviar", presupuestosH.Enviar)
		}
		v1.DELETE("/presupuestos/:id", gestion, presupuestosH.Eliminar)
		v1.POST("/presupuestos/:id/facturar", gestion, presupuestosH.Facturar)

		facturas := v1.Group("/facturas", gestion)
		{
			facturas.GET("", facturasH.Listar)
			facturas.GET("/:id", facturasH.Obtener)
			facturas.PATCH("/:id", facturasH.Actualizar)
		}

		tareas := v1.Group("/tareas", todos)
		{
			tareas.POST("", tareasH.Crear)
			tareas.GET("", tareasH.Listar)
			tareas.GET("/:id", tareasH.Obtener)
			tareas.PUT("/:id", tareasH.Actualizar)
			tareas.PATCH("/:id/completar", tareasH.Completar)
			tareas.DELETE("/:id", tareasH.Eliminar)
		}

		v1.GET("/sitios", todos, sitiosH.Listar)
		sitios := v1.Group("/sitios", admin)
		{
			sitios.POST("", sitiosH.Crear)
			sitios.PUT("/:id", sitiosH.Actualizar)
			sitios.DELETE("/:id", sitiosH.Desactivar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
