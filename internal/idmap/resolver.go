package idmap

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/suPer8Hu/session-to-uninfo/internal/uninfo"
)

// MappingCache is an optional fast path in front of the id map table.
// A hit saves loading the whole table, but is only used once the table
// confirms it. Misses, stale entries and failures fall through to the table.
type MappingCache interface {
	GetMappings(ctx context.Context, sessionIDs []int64) (map[int64]int64, error)
	PutMappings(ctx context.Context, mappings map[int64]int64) error
}

// Resolver maps legacy session ids to unified identity ids, creating the
// unified rows and the mapping rows on first use.
type Resolver struct {
	cache MappingCache
}

func NewResolver(cache MappingCache) *Resolver {
	return &Resolver{cache: cache}
}

// ResolveBatch returns the unified identity id of every requested session id.
// The result holds exactly the requested ids.
//
// Each newly resolved id is committed in its own transaction, so a failure
// leaves earlier resolutions in place and a retry only redoes the rest. A
// missing legacy row fails the call with *NotFoundError.
func (r *Resolver) ResolveBatch(ctx context.Context, db *gorm.DB, sessionIDs []int64) (map[int64]int64, error) {
	wanted := dedupe(sessionIDs)
	result := make(map[int64]int64, len(wanted))
	if len(wanted) == 0 {
		return result, nil
	}

	pending := wanted
	if r.cache != nil {
		hits, err := r.confirmedHits(ctx, db, wanted)
		if err != nil {
			return nil, err
		}
		pending = make([]int64, 0, len(wanted))
		for _, id := range wanted {
			if uid, ok := hits[id]; ok {
				result[id] = uid
				continue
			}
			pending = append(pending, id)
		}
		if len(pending) == 0 {
			return result, nil
		}
	}

	resolved, err := r.resolveFromStore(ctx, db, pending)
	for id, uid := range resolved {
		result[id] = uid
	}
	if r.cache != nil && len(resolved) > 0 {
		if cerr := r.cache.PutMappings(ctx, resolved); cerr != nil {
			zerolog.Ctx(ctx).Warn().Err(cerr).Msg("mapping cache write failed")
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// confirmedHits returns the cache entries for ids that the id map table
// still holds with the same uninfo id. Entries left over from another
// database or a reset table are dropped and resolved again.
func (r *Resolver) confirmedHits(ctx context.Context, db *gorm.DB, ids []int64) (map[int64]int64, error) {
	hits, err := r.cache.GetMappings(ctx, ids)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("mapping cache read failed")
		return nil, nil
	}
	if len(hits) == 0 {
		return nil, nil
	}

	cached := make([]int64, 0, len(hits))
	for id := range hits {
		cached = append(cached, id)
	}
	stored, err := NewRepo(db).GetMany(ctx, cached)
	if err != nil {
		return nil, err
	}

	confirmed := make(map[int64]int64, len(hits))
	for id, uid := range hits {
		if sid, ok := stored[id]; ok && sid == uid {
			confirmed[id] = uid
			continue
		}
		zerolog.Ctx(ctx).Warn().
			Int64("session_id", id).
			Int64("cached_uninfo_id", uid).
			Msg("stale mapping cache entry")
	}
	return confirmed, nil
}

// resolveFromStore returns what it resolved so far even when it fails.
func (r *Resolver) resolveFromStore(ctx context.Context, db *gorm.DB, sessionIDs []int64) (map[int64]int64, error) {
	known, err := NewRepo(db).LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]int64, len(sessionIDs))
	for _, id := range sessionIDs {
		if uid, ok := known[id]; ok {
			out[id] = uid
			continue
		}
		uid, err := r.resolveOne(ctx, db, id)
		if err != nil {
			return out, err
		}
		known[id] = uid
		out[id] = uid
	}
	return out, nil
}

func (r *Resolver) resolveOne(ctx context.Context, db *gorm.DB, sessionID int64) (int64, error) {
	var uninfoID int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessions := uninfo.NewRepo(tx)

		sess, err := sessions.GetSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{SessionID: sessionID}
			}
			return err
		}

		key := uninfo.Translate(*sess)
		ident, created, err := sessions.FindOrCreateIdentity(ctx, key)
		if err != nil {
			return err
		}

		if err := NewRepo(tx).Create(ctx, &IdMap{SessionID: sessionID, UninfoID: ident.ID}); err != nil {
			return err
		}

		uninfoID = ident.ID
		zerolog.Ctx(ctx).Debug().
			Int64("session_id", sessionID).
			Int64("uninfo_id", ident.ID).
			Bool("created", created).
			Str("scope", string(key.Scope)).
			Msg("resolved legacy session")
		return nil
	})
	return uninfoID, err
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
