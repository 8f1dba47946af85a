package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/suPer8Hu/session-to-uninfo/internal/config"
	"github.com/suPer8Hu/session-to-uninfo/internal/db"
	"github.com/suPer8Hu/session-to-uninfo/internal/idmap"
	"github.com/suPer8Hu/session-to-uninfo/internal/logging"
	"github.com/suPer8Hu/session-to-uninfo/internal/store/redisstore"
)

// App holds the dependencies shared by the binaries.
type App struct {
	Cfg      config.Config
	Log      zerolog.Logger
	DB       *gorm.DB
	Redis    *redisstore.Store
	Resolver *idmap.Resolver
}

// Open connects to the database and, when configured, to redis. An
// unreachable redis only disables the mapping cache.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN, cfg.DBLogLevel)
	if err != nil {
		return nil, err
	}

	a := &App{Cfg: cfg, Log: log, DB: gdb}

	var cache idmap.MappingCache
	if cfg.RedisAddr != "" {
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redisstore.Namespace(cfg.DBDriver, cfg.DBDSN), cfg.MappingCacheTTL)
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rds.Ping(pctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, mapping cache disabled")
			_ = rds.Close()
		} else {
			a.Redis = rds
			cache = rds
		}
	}
	a.Resolver = idmap.NewResolver(cache)
	return a, nil
}

// Context returns ctx carrying the app logger.
func (a *App) Context(ctx context.Context) context.Context {
	return a.Log.WithContext(ctx)
}

func (a *App) Close() error {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
