package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"printflow/internal/config"
	"printflow/internal/handler"
	"printflow/internal/infra"
	"printflow/internal/middleware"
	"printflow/internal/repository"
	syncsvc "printflow/internal/sync"
	"printflow/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, erpCB *infra.CircuitBreaker, svc *syncsvc.Service, dispatcher *worker.Dispatcher) *gin.Engine {
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
	ordenRepo := repository.NewOrdenRepository(db)

	// ── Handlers ─────────────────────────────────────────────────────────────
	syncH := handler.NewSyncHandler(svc)
	ordenesH := handler.NewOrdenesHandler(ordenRepo, dispatcher, cfg.FileStoragePath)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, erpCB))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	{
		v1.POST("/sync", syncH.Trigger)
		v1.GET("/sync/estado", syncH.Estado)
		v1.POST("/ordenes/medir", ordenesH.Medir)
		v1.GET("/ordenes/:id/ficha", ordenesH.Ficha)
	}

	return r
}
