package pipeline

import (
	"github.com/sadpig70/qns-go/core"
	"go.uber.org/zap"
)

const (
	SCORING_SETTING_KEY = "scoring"
	REORDER_SETTING_KEY = "reorder"
	ROUTER_SETTING_KEY  = "router"
)

// RegisterDefaultSettings seeds the global setting registry so a
// setting file only has to override what it changes.
func RegisterDefaultSettings() {
	opts := DefaultOptions()
	core.RegisterSetting(SCORING_SETTING_KEY, opts.Scoring)
	core.RegisterSetting(REORDER_SETTING_KEY, opts.Reorder)
	core.RegisterSetting(ROUTER_SETTING_KEY, opts.Router)
}

// OptionsFromSetting builds Options from the parsed global setting,
// falling back to defaults for anything absent.
func OptionsFromSetting() Options {
	opts := DefaultOptions()

	if mapped, ok := componentMap(SCORING_SETTING_KEY); ok {
		opts.Scoring.GateTime1Q = core.SettingFloat(mapped, "gate_time_1q", opts.Scoring.GateTime1Q)
		opts.Scoring.GateTime2Q = core.SettingFloat(mapped, "gate_time_2q", opts.Scoring.GateTime2Q)
		opts.Scoring.MeasureTime = core.SettingFloat(mapped, "measure_time", opts.Scoring.MeasureTime)
	}
	if mapped, ok := componentMap(REORDER_SETTING_KEY); ok {
		opts.Reorder.BeamWidth = core.SettingInt(mapped, "beam_width", opts.Reorder.BeamWidth)
		opts.Reorder.MaxRounds = core.SettingInt(mapped, "max_rounds", opts.Reorder.MaxRounds)
		opts.Reorder.StagnationEps = core.SettingFloat(mapped, "stagnation_eps", opts.Reorder.StagnationEps)
		opts.Reorder.Patience = core.SettingInt(mapped, "patience", opts.Reorder.Patience)
		opts.Reorder.Workers = core.SettingInt(mapped, "workers", opts.Reorder.Workers)
	}
	if mapped, ok := componentMap(ROUTER_SETTING_KEY); ok {
		opts.Router.DistWeight = core.SettingFloat(mapped, "dist_weight", opts.Router.DistWeight)
		opts.Router.ErrWeight = core.SettingFloat(mapped, "err_weight", opts.Router.ErrWeight)
		opts.Router.XtalkWeight = core.SettingFloat(mapped, "xtalk_weight", opts.Router.XtalkWeight)
	}
	return opts
}

func componentMap(key string) (map[string]interface{}, bool) {
	s, ok := core.GetComponentSetting(key)
	if !ok {
		zap.L().Debug(key + " setting is not found")
		return nil, false
	}
	mapped, ok := s.(map[string]interface{})
	if !ok {
		zap.L().Debug(key + " setting is not set")
		return nil, false
	}
	return mapped, true
}
