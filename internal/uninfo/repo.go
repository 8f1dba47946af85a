package uninfo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetSession(ctx context.Context, id int64) (*LegacySession, error) {
	var s LegacySession
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessionIDs returns up to limit legacy session ids greater than afterID, ASC.
func (r *Repo) ListSessionIDs(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = 500
	}
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&LegacySession{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repo) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&LegacySession{}).Count(&n).Error
	return n, err
}

func (r *Repo) FindIdentity(ctx context.Context, key IdentityKey) (*UnifiedIdentity, error) {
	return r.findIdentity(r.db.WithContext(ctx), key)
}

// findIdentityLatest is FindIdentity as a locking read. Inside a REPEATABLE
// READ transaction (MySQL InnoDB) a locking read sees rows committed after
// the transaction's snapshot; sqlite drops the clause.
func (r *Repo) findIdentityLatest(ctx context.Context, key IdentityKey) (*UnifiedIdentity, error) {
	return r.findIdentity(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: clause.LockingStrengthShare}), key)
}

func (r *Repo) findIdentity(q *gorm.DB, key IdentityKey) (*UnifiedIdentity, error) {
	var u UnifiedIdentity
	if err := q.Where(key.Conditions()).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CreateIdentity(ctx context.Context, u *UnifiedIdentity) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// FindOrCreateIdentity returns the identity matching key, inserting it when
// none exists. created is true when the row was inserted by this call.
//
// If the insert fails because another writer inserted the same key in the
// meantime, the existing row is returned instead.
func (r *Repo) FindOrCreateIdentity(ctx context.Context, key IdentityKey) (u *UnifiedIdentity, created bool, err error) {
	u, err = r.FindIdentity(ctx, key)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	u = key.NewIdentity()
	createErr := r.CreateIdentity(ctx, u)
	if createErr == nil {
		return u, true, nil
	}

	existing, getErr := r.findIdentityLatest(ctx, key)
	if getErr == nil {
		return existing, false, nil
	}
	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, createErr
	}
	return nil, false, getErr
}
