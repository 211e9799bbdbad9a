package core

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/sadpig70/qns-go/common"
	"go.uber.org/zap"
)

var globalSetting *Setting

// Setting holds per-component settings keyed by component name
// ("scoring", "reorder", "router", "mps", "zne"). Values are decoded
// from TOML into plain maps and cast by each component.
type Setting struct {
	ComponentSetting map[string]interface{} `toml:"com,omitempty"`
}

func ResetSetting() {
	globalSetting = &Setting{
		ComponentSetting: make(map[string]interface{}),
	}
}

func RegisterSetting(settingName string, settingVal interface{}) {
	globalSetting.ComponentSetting[settingName] = settingVal
}

func ParseSettingFromPath(settingsPath string) error {
	tomlString, err := common.ReadSettingsFile(settingsPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read setting file/reason:%s", err))
		return err
	}
	return globalSetting.parseSetting(tomlString)
}

func GetGlobalSetting() *Setting {
	return globalSetting
}

func GetComponentSetting(name string) (interface{}, bool) {
	if globalSetting == nil {
		zap.L().Error("Setting is not initialized")
		return nil, false
	}
	val, ok := globalSetting.ComponentSetting[name]
	return val, ok
}

func (s *Setting) parseSetting(tomlString string) error {
	_, err := toml.Decode(tomlString, s)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse setting/reason:%s", err))
		return err
	}
	zap.L().Debug(fmt.Sprintf("Setting is %v", s.ComponentSetting))
	return nil
}

// SettingFloat reads a float value from a decoded component setting
// map, falling back to def when absent or mistyped. TOML integers
// decode as int64, so both are accepted.
func SettingFloat(mapped map[string]interface{}, key string, def float64) float64 {
	v, ok := mapped[key]
	if !ok {
		return def
	}
	switch f := v.(type) {
	case float64:
		return f
	case int64:
		return float64(f)
	default:
		zap.L().Warn(fmt.Sprintf("setting %s has unexpected type %T", key, v))
		return def
	}
}

func SettingInt(mapped map[string]interface{}, key string, def int) int {
	v, ok := mapped[key]
	if !ok {
		return def
	}
	i, ok := v.(int64)
	if !ok {
		zap.L().Warn(fmt.Sprintf("setting %s has unexpected type %T", key, v))
		return def
	}
	return int(i)
}

func SettingString(mapped map[string]interface{}, key string, def string) string {
	v, ok := mapped[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		zap.L().Warn(fmt.Sprintf("setting %s has unexpected type %T", key, v))
		return def
	}
	return s
}
