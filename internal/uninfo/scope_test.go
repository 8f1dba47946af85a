package uninfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyScope(t *testing.T) {
	tests := []struct {
		platform  string
		contextID string
		want      Scope
	}{
		{PlatformConsole, "u", ScopeConsole},
		{PlatformDiscord, "u", ScopeDiscord},
		{PlatformDoDo, "u", ScopeDoDo},
		{PlatformFeishu, "u", ScopeFeishu},
		{PlatformKaiheila, "u", ScopeKook},
		{PlatformQQGuild, "u", ScopeQQGuild},
		{PlatformTelegram, "u", ScopeTelegram},
		{PlatformQQ, "123456789", ScopeQQClient},
		{"matrix", "u", ScopeUnknown},
		{"", "", ScopeUnknown},
		{"QQ", "123", ScopeUnknown},
	}

	for _, tt := range tests {
		got := ClassifyScope(tt.platform, tt.contextID)
		assert.Equal(t, tt.want, got, "platform=%q id=%q", tt.platform, tt.contextID)
		assert.True(t, got.Valid())
	}
}

func TestClassifyScope_QQLengthBoundary(t *testing.T) {
	assert.Equal(t, ScopeQQClient, ClassifyScope(PlatformQQ, ""))
	assert.Equal(t, ScopeQQClient, ClassifyScope(PlatformQQ, "123456789012"))
	assert.Equal(t, ScopeQQAPI, ClassifyScope(PlatformQQ, "1234567890123"))
	assert.Equal(t, ScopeQQAPI, ClassifyScope(PlatformQQ, "E4A5B1C2D3F6A7B8C9D0E1F2A3B4C5D6"))
}

func TestScopeValid(t *testing.T) {
	assert.True(t, ScopeWeChatOAP.Valid())
	assert.False(t, Scope("qq").Valid())
}
