package uninfo

import "fmt"

// Level is the granularity of a legacy session.
type Level int

const (
	LevelNone    Level = 0
	LevelPrivate Level = 1
	LevelGroup   Level = 2
	LevelChannel Level = 3
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelPrivate:
		return "private"
	case LevelGroup:
		return "group"
	case LevelChannel:
		return "channel"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// SceneType is the kind of a unified scene.
type SceneType int

const (
	// SceneNone marks an unresolvable scene or an absent parent.
	SceneNone            SceneType = -1
	ScenePrivate         SceneType = 0
	SceneGroup           SceneType = 1
	SceneGuild           SceneType = 2
	SceneChannelText     SceneType = 3
	SceneChannelCategory SceneType = 4
	SceneChannelVoice    SceneType = 5
)

func (t SceneType) String() string {
	switch t {
	case SceneNone:
		return "none"
	case ScenePrivate:
		return "private"
	case SceneGroup:
		return "group"
	case SceneGuild:
		return "guild"
	case SceneChannelText:
		return "channel_text"
	case SceneChannelCategory:
		return "channel_category"
	case SceneChannelVoice:
		return "channel_voice"
	default:
		return fmt.Sprintf("scene(%d)", int(t))
	}
}

// Scene is a unified scene with its optional parent.
// A missing parent has ParentType SceneNone and an empty ParentID.
type Scene struct {
	Type       SceneType
	ID         string
	ParentType SceneType
	ParentID   string
}

// HasParent reports whether the scene is nested under another scene.
func (s Scene) HasParent() bool { return s.ParentType != SceneNone }

// ResolveScene maps a legacy (level, id1, id2, id3) tuple to a unified scene.
//
// id1 is always the user, id2 the group or sub-channel and id3 the guild.
// The CHANNEL level covers two kinds of legacy session: a guild-wide one,
// which leaves id2 empty and becomes a GUILD scene, and a sub-channel one,
// which becomes a CHANNEL_TEXT scene whose parent is the guild.
func ResolveScene(level Level, id1, id2, id3 string) Scene {
	scene := Scene{Type: SceneNone, ParentType: SceneNone}

	switch level {
	case LevelPrivate:
		scene.Type = ScenePrivate
		scene.ID = id1
	case LevelGroup:
		scene.Type = SceneGroup
		scene.ID = id2
	case LevelChannel:
		if id2 == "" {
			scene.Type = SceneGuild
			scene.ID = id3
		} else {
			scene.Type = SceneChannelText
			scene.ID = id2
			scene.ParentType = SceneGuild
			scene.ParentID = id3
		}
	}

	return scene
}
