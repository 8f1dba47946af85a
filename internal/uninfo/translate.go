package uninfo

import "gorm.io/datatypes"

// IdentityKey is the natural key of a unified identity. At most one
// UnifiedIdentity row exists per distinct key.
type IdentityKey struct {
	SelfID  string `json:"self_id"`
	Adapter string `json:"adapter"`
	Scope   Scope  `json:"scope"`
	Scene   Scene  `json:"scene"`
	UserID  string `json:"user_id"`
}

// Translate derives the unified identity key of a legacy session.
// The user is always id1, whatever the level.
func Translate(s LegacySession) IdentityKey {
	return IdentityKey{
		SelfID:  s.BotID,
		Adapter: s.BotType,
		Scope:   ClassifyScope(s.Platform, s.ID1),
		Scene:   ResolveScene(s.Level, s.ID1, s.ID2, s.ID3),
		UserID:  s.ID1,
	}
}

// Conditions returns the key as column conditions. A map is used instead of
// a struct so that zero values (scene type 0, empty ids) are matched too.
func (k IdentityKey) Conditions() map[string]any {
	return map[string]any{
		"self_id":           k.SelfID,
		"adapter":           k.Adapter,
		"scope":             string(k.Scope),
		"scene_type":        int(k.Scene.Type),
		"scene_id":          k.Scene.ID,
		"parent_scene_type": int(k.Scene.ParentType),
		"parent_scene_id":   k.Scene.ParentID,
		"user_id":           k.UserID,
	}
}

// NewIdentity builds a row for the key. Profile data is never filled here;
// scene and user data start empty, parent scene and member data start null.
func (k IdentityKey) NewIdentity() *UnifiedIdentity {
	return &UnifiedIdentity{
		SelfID:          k.SelfID,
		Adapter:         k.Adapter,
		Scope:           k.Scope,
		SceneType:       k.Scene.Type,
		SceneID:         k.Scene.ID,
		SceneData:       datatypes.JSONMap{},
		ParentSceneType: k.Scene.ParentType,
		ParentSceneID:   k.Scene.ParentID,
		ParentSceneData: nil,
		UserID:          k.UserID,
		UserData:        datatypes.JSONMap{},
		MemberData:      nil,
	}
}
