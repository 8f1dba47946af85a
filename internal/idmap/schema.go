package idmap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/suPer8Hu/session-to-uninfo/internal/uninfo"
)

// EnsureSchema checks that the legacy session table and the unified identity
// table exist and creates the id map table when it is missing.
//
// It returns false, with a warning logged, when either external table is
// missing; the caller must not resolve anything in that case.
func EnsureSchema(ctx context.Context, db *gorm.DB) (bool, error) {
	log := zerolog.Ctx(ctx)
	m := db.WithContext(ctx).Migrator()

	if !m.HasTable(uninfo.LegacySessionTable) {
		log.Warn().Str("table", uninfo.LegacySessionTable).
			Msg("legacy session table does not exist, nothing to migrate")
		return false, nil
	}
	if !m.HasTable(uninfo.UnifiedIdentityTable) {
		log.Warn().Str("table", uninfo.UnifiedIdentityTable).
			Msg("unified identity table does not exist, install and initialize the uninfo plugin before migrating")
		return false, nil
	}
	if !m.HasTable(Table) {
		if err := m.CreateTable(&IdMap{}); err != nil {
			return false, fmt.Errorf("create %s: %w", Table, err)
		}
		log.Info().Str("table", Table).Msg("created id map table")
	}
	return true, nil
}
