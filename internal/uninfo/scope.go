package uninfo

import "unicode/utf8"

// Scope identifies the protocol integration a unified identity belongs to.
type Scope string

const (
	ScopeQQClient  Scope = "QQClient" // QQ client protocol
	ScopeQQGuild   Scope = "QQGuild"  // QQ user guilds, unofficial
	ScopeQQAPI     Scope = "QQAPI"    // QQ official bot API
	ScopeTelegram  Scope = "Telegram"
	ScopeDiscord   Scope = "Discord"
	ScopeFeishu    Scope = "Feishu"
	ScopeDoDo      Scope = "DoDo"
	ScopeKook      Scope = "Kaiheila"
	ScopeMinecraft Scope = "Minecraft"
	ScopeGitHub    Scope = "GitHub"
	ScopeConsole   Scope = "Console"
	ScopeDing      Scope = "Ding"
	ScopeWeChat    Scope = "WeChat"
	ScopeWeChatOAP Scope = "WeChatOfficialAccountPlatform"
	ScopeWeCom     Scope = "WeCom"
	ScopeTailChat  Scope = "TailChat"
	ScopeOnebot12  Scope = "Onebot12"
	ScopeSatori    Scope = "Satori"
	ScopeUnknown   Scope = "Unknown"
)

var knownScopes = map[Scope]struct{}{
	ScopeQQClient: {}, ScopeQQGuild: {}, ScopeQQAPI: {}, ScopeTelegram: {},
	ScopeDiscord: {}, ScopeFeishu: {}, ScopeDoDo: {}, ScopeKook: {},
	ScopeMinecraft: {}, ScopeGitHub: {}, ScopeConsole: {}, ScopeDing: {},
	ScopeWeChat: {}, ScopeWeChatOAP: {}, ScopeWeCom: {}, ScopeTailChat: {},
	ScopeOnebot12: {}, ScopeSatori: {}, ScopeUnknown: {},
}

// Valid reports whether s is one of the declared scopes.
func (s Scope) Valid() bool {
	_, ok := knownScopes[s]
	return ok
}

// Legacy platform tags.
const (
	PlatformConsole  = "console"
	PlatformDiscord  = "discord"
	PlatformDoDo     = "dodo"
	PlatformFeishu   = "feishu"
	PlatformKaiheila = "kaiheila"
	PlatformQQ       = "qq"
	PlatformQQGuild  = "qqguild"
	PlatformTelegram = "telegram"
)

var platformScopes = map[string]Scope{
	PlatformConsole:  ScopeConsole,
	PlatformDiscord:  ScopeDiscord,
	PlatformDoDo:     ScopeDoDo,
	PlatformFeishu:   ScopeFeishu,
	PlatformKaiheila: ScopeKook,
	PlatformQQGuild:  ScopeQQGuild,
	PlatformTelegram: ScopeTelegram,
}

// qqOpenIDMinLen is the id length above which a qq id is an official API openid.
const qqOpenIDMinLen = 12

// ClassifyScope maps a legacy platform tag to a unified scope. The legacy
// "qq" platform covers both the client protocol and the official API; the
// two are told apart by the length of contextID.
func ClassifyScope(platform, contextID string) Scope {
	if platform == PlatformQQ {
		if utf8.RuneCountInString(contextID) > qqOpenIDMinLen {
			return ScopeQQAPI
		}
		return ScopeQQClient
	}
	if s, ok := platformScopes[platform]; ok {
		return s
	}
	return ScopeUnknown
}
