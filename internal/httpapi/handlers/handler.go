package handlers

import (
	"github.com/suPer8Hu/session-to-uninfo/internal/config"
	"github.com/suPer8Hu/session-to-uninfo/internal/idmap"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	Cfg      config.Config
	Resolver *idmap.Resolver
}

func NewHandler(db *gorm.DB, cfg config.Config, resolver *idmap.Resolver) *Handler {
	if resolver == nil {
		resolver = idmap.NewResolver(nil)
	}
	return &Handler{DB: db, Cfg: cfg, Resolver: resolver}
}
