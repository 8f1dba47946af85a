package idmap

import (
	"context"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// LoadAll returns every stored mapping keyed by session id.
func (r *Repo) LoadAll(ctx context.Context) (map[int64]int64, error) {
	var rows []IdMap
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(rows))
	for _, m := range rows {
		out[m.SessionID] = m.UninfoID
	}
	return out, nil
}

// GetMany returns the stored mappings among sessionIDs; unmapped ids are absent.
func (r *Repo) GetMany(ctx context.Context, sessionIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return out, nil
	}
	var rows []IdMap
	if err := r.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.SessionID] = m.UninfoID
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, sessionID int64) (*IdMap, error) {
	var m IdMap
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, m *IdMap) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&IdMap{}).Count(&n).Error
	return n, err
}
