package idmap

import (
	"context"

	"gorm.io/gorm"

	"github.com/suPer8Hu/session-to-uninfo/internal/uninfo"
)

type Stats struct {
	LegacySessions int64 `json:"legacy_sessions"`
	Mapped         int64 `json:"mapped"`
	Pending        int64 `json:"pending"`
}

// Status counts legacy sessions and how many of them still lack a mapping.
func Status(ctx context.Context, db *gorm.DB) (Stats, error) {
	var st Stats

	total, err := uninfo.NewRepo(db).CountSessions(ctx)
	if err != nil {
		return st, err
	}
	mapped, err := NewRepo(db).Count(ctx)
	if err != nil {
		return st, err
	}

	var pending int64
	if err := db.WithContext(ctx).
		Model(&uninfo.LegacySession{}).
		Where("id NOT IN (?)", db.Model(&IdMap{}).Select("session_id")).
		Count(&pending).Error; err != nil {
		return st, err
	}

	st.LegacySessions = total
	st.Mapped = mapped
	st.Pending = pending
	return st, nil
}
