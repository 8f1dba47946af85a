package idmap

const Table = "nonebot_session_to_uninfo_id_map"

// IdMap links a legacy session id to a unified identity id.
// Rows are created once and never updated or deleted.
type IdMap struct {
	ID        int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SessionID int64 `gorm:"column:session_id;not null;uniqueIndex:unique_map,priority:1" json:"session_id"`
	UninfoID  int64 `gorm:"column:uninfo_id;not null;uniqueIndex:unique_map,priority:2" json:"uninfo_id"`
}

func (IdMap) TableName() string { return Table }
