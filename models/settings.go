package models

import "strconv"

// SettingType identifies the declared type of a guild setting value.
type SettingType int

const (
	SettingBool SettingType = iota
	SettingInt
	SettingString
	// SettingID is an integer-like handle referencing a Discord channel,
	// role or similar. Zero means "not configured".
	SettingID
)

// SettingValue is a typed guild setting value. Exactly one field besides
// Type is meaningful, selected by Type.
type SettingValue struct {
	Type SettingType
	Bool bool
	Int  int64
	Str  string
	ID   int64
}

func BoolValue(v bool) SettingValue   { return SettingValue{Type: SettingBool, Bool: v} }
func IntValue(v int64) SettingValue   { return SettingValue{Type: SettingInt, Int: v} }
func StringValue(v string) SettingValue {
	return SettingValue{Type: SettingString, Str: v}
}
func IDValue(v int64) SettingValue { return SettingValue{Type: SettingID, ID: v} }

// Stored returns the string representation persisted in guild_settings.
func (v SettingValue) Stored() string {
	switch v.Type {
	case SettingBool:
		return strconv.FormatBool(v.Bool)
	case SettingInt:
		return strconv.FormatInt(v.Int, 10)
	case SettingID:
		return strconv.FormatInt(v.ID, 10)
	default:
		return v.Str
	}
}

// SettingDef declares a setting key's type and its compiled-in default.
type SettingDef struct {
	Type    SettingType
	Default SettingValue
}

// Guild setting keys. Keys not listed in SettingDefs are rejected.
const (
	KeyXPRate          = "xp_rate"
	KeyXPCooldown      = "xp_cooldown"
	KeyLevelUpMessage  = "level_up_message"
	KeyLevelChannel    = "level_channel"
	KeyModLogChannel   = "mod_log_channel"
	KeyLogChannel      = "log_channel"
	KeyLoggingEnabled  = "unified_logging_enabled"
	KeyWhisperEnabled  = "whisper_enabled"
	KeyWhisperChannel  = "whisper_channel"
	KeyWhisperStaff    = "whisper_staff_role"
	KeyAutoroleEnabled = "autorole_enabled"
	KeyPrefix          = "prefix"
)

// SettingDefs is the declared-type table for every guild setting key,
// including the per-category logging toggles and channels.
var SettingDefs = buildSettingDefs()

func buildSettingDefs() map[string]SettingDef {
	defs := map[string]SettingDef{
		KeyXPRate:         {SettingInt, IntValue(10)},
		KeyXPCooldown:     {SettingInt, IntValue(60)},
		KeyLevelUpMessage: {SettingString, StringValue("🎉 {user} reached level {level}!")},
		KeyLevelChannel:   {SettingID, IDValue(0)},

		KeyModLogChannel:  {SettingID, IDValue(0)},
		KeyLogChannel:     {SettingID, IDValue(0)},
		KeyLoggingEnabled: {SettingBool, BoolValue(true)},

		KeyWhisperEnabled: {SettingBool, BoolValue(true)},
		KeyWhisperChannel: {SettingID, IDValue(0)},
		KeyWhisperStaff:   {SettingID, IDValue(0)},

		KeyAutoroleEnabled: {SettingBool, BoolValue(false)},
		KeyPrefix:          {SettingString, StringValue("!")},
	}

	for _, cat := range AllCategories {
		defs[cat.EnabledKey()] = SettingDef{SettingBool, BoolValue(true)}
		defs[cat.ChannelKey()] = SettingDef{SettingID, IDValue(0)}
	}

	return defs
}

// SettingKeys returns all declared setting keys.
func SettingKeys() []string {
	keys := make([]string, 0, len(SettingDefs))
	for k := range SettingDefs {
		keys = append(keys, k)
	}
	return keys
}
