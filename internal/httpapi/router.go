package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/suPer8Hu/session-to-uninfo/internal/common"
	"github.com/suPer8Hu/session-to-uninfo/internal/config"
	"github.com/suPer8Hu/session-to-uninfo/internal/httpapi/handlers"
	"github.com/suPer8Hu/session-to-uninfo/internal/httpapi/middleware"
	"github.com/suPer8Hu/session-to-uninfo/internal/idmap"
)

func NewRouter(db *gorm.DB, cfg config.Config, resolver *idmap.Resolver, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID(log))
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, resolver)

	r.GET("/ping", h.Ping)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/schema", h.Schema)
	authGroup.GET("/idmap/status", h.Status)
	authGroup.GET("/idmap/sessions/:session_id", h.GetMapping)
	authGroup.POST("/idmap/resolve", h.Resolve)
	return r
}
