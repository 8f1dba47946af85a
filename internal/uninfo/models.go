package uninfo

import "gorm.io/datatypes"

const (
	LegacySessionTable   = "nonebot_plugin_session_orm_sessionmodel"
	UnifiedIdentityTable = "nonebot_plugin_uninfo_sessionmodel"
)

// LegacySession is a row of the legacy session plugin. Read only.
type LegacySession struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BotID    string `gorm:"column:bot_id;type:varchar(64);not null" json:"bot_id"`
	BotType  string `gorm:"column:bot_type;type:varchar(32);not null" json:"bot_type"`
	Platform string `gorm:"column:platform;type:varchar(32);not null" json:"platform"`
	Level    Level  `gorm:"column:level;not null" json:"level"`
	ID1      string `gorm:"column:id1;type:varchar(64);not null" json:"id1"`
	ID2      string `gorm:"column:id2;type:varchar(64);not null" json:"id2"`
	ID3      string `gorm:"column:id3;type:varchar(64);not null" json:"id3"`
}

func (LegacySession) TableName() string { return LegacySessionTable }

// UnifiedIdentity is a row of the unified info plugin. The table is shared
// with that plugin, so rows found here may not have been created by us.
type UnifiedIdentity struct {
	ID              int64             `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SelfID          string            `gorm:"column:self_id;type:varchar(64);not null;uniqueIndex:unique_session,priority:1" json:"self_id"`
	Adapter         string            `gorm:"column:adapter;type:varchar(32);not null;uniqueIndex:unique_session,priority:2" json:"adapter"`
	Scope           Scope             `gorm:"column:scope;type:varchar(32);not null;uniqueIndex:unique_session,priority:3" json:"scope"`
	SceneType       SceneType         `gorm:"column:scene_type;not null;uniqueIndex:unique_session,priority:4" json:"scene_type"`
	SceneID         string            `gorm:"column:scene_id;type:varchar(64);not null;uniqueIndex:unique_session,priority:5" json:"scene_id"`
	SceneData       datatypes.JSONMap `gorm:"column:scene_data;not null" json:"scene_data"`
	ParentSceneType SceneType         `gorm:"column:parent_scene_type;not null;uniqueIndex:unique_session,priority:6" json:"parent_scene_type"`
	ParentSceneID   string            `gorm:"column:parent_scene_id;type:varchar(64);not null;uniqueIndex:unique_session,priority:7" json:"parent_scene_id"`
	ParentSceneData datatypes.JSONMap `gorm:"column:parent_scene_data" json:"parent_scene_data"`
	UserID          string            `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:unique_session,priority:8" json:"user_id"`
	UserData        datatypes.JSONMap `gorm:"column:user_data;not null" json:"user_data"`
	MemberData      datatypes.JSONMap `gorm:"column:member_data" json:"member_data"`
}

func (UnifiedIdentity) TableName() string { return UnifiedIdentityTable }

// Key returns the natural key of the row.
func (u *UnifiedIdentity) Key() IdentityKey {
	return IdentityKey{
		SelfID:  u.SelfID,
		Adapter: u.Adapter,
		Scope:   u.Scope,
		Scene: Scene{
			Type:       u.SceneType,
			ID:         u.SceneID,
			ParentType: u.ParentSceneType,
			ParentID:   u.ParentSceneID,
		},
		UserID: u.UserID,
	}
}
