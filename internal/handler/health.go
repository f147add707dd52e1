package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Pinger checks one backing dependency.
type Pinger func(ctx context.Context) error

// HealthDeps lists what /health reports on. Nil members are skipped.
type HealthDeps struct {
	DB               *gorm.DB
	Redis            *redis.Client
	EstadoEmail      func() string
	AutoFechamentoOn func() bool
}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
func Health(deps HealthDeps) gin.HandlerFunc {
	var pingDB, pingRedis Pinger
	if deps.DB != nil {
		pingDB = func(ctx context.Context) error {
			sqlDB, err := deps.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if deps.Redis != nil {
		pingRedis = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}
	return health(pingDB, pingRedis, deps.EstadoEmail, deps.AutoFechamentoOn)
}

func health(pingDB, pingRedis Pinger, estadoEmail func() string, autoOn func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := statusDe(ctx, pingDB)
		redisStatus := statusDe(ctx, pingRedis)

		status := http.StatusOK
		if dbStatus == "error" || redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		// The mail breaker is informational; an open breaker does not fail the check.
		if estadoEmail != nil {
			body["email"] = estadoEmail()
		}
		if autoOn != nil {
			body["auto_fechamento_armado"] = autoOn()
		}
		c.JSON(status, body)
	}
}

func statusDe(ctx context.Context, ping Pinger) string {
	switch {
	case ping == nil:
		return "disabled"
	case ping(ctx) != nil:
		return "error"
	default:
		return "connected"
	}
}
