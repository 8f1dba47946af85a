package uninfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveScene(t *testing.T) {
	tests := []struct {
		name          string
		level         Level
		id1, id2, id3 string
		want          Scene
	}{
		{
			name: "private", level: LevelPrivate, id1: "u1",
			want: Scene{Type: ScenePrivate, ID: "u1", ParentType: SceneNone},
		},
		{
			name: "group", level: LevelGroup, id1: "u1", id2: "g1",
			want: Scene{Type: SceneGroup, ID: "g1", ParentType: SceneNone},
		},
		{
			name: "guild wide channel session", level: LevelChannel, id1: "u1", id3: "gd1",
			want: Scene{Type: SceneGuild, ID: "gd1", ParentType: SceneNone},
		},
		{
			name: "sub channel", level: LevelChannel, id1: "u1", id2: "ch1", id3: "gd1",
			want: Scene{Type: SceneChannelText, ID: "ch1", ParentType: SceneGuild, ParentID: "gd1"},
		},
		{
			name: "none", level: LevelNone, id1: "u1", id2: "g1", id3: "gd1",
			want: Scene{Type: SceneNone, ParentType: SceneNone},
		},
		{
			name: "unknown level", level: Level(7), id1: "u1",
			want: Scene{Type: SceneNone, ParentType: SceneNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveScene(tt.level, tt.id1, tt.id2, tt.id3))
		})
	}
}

func TestSceneHasParent(t *testing.T) {
	assert.True(t, ResolveScene(LevelChannel, "u", "c", "g").HasParent())
	assert.False(t, ResolveScene(LevelGroup, "u", "g", "").HasParent())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "channel", LevelChannel.String())
	assert.Equal(t, "level(9)", Level(9).String())
	assert.Equal(t, "channel_text", SceneChannelText.String())
}
