//go:build unit
// +build unit

package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sadpig70/qns-go/core"
	"github.com/stretchr/testify/assert"
)

func parseSettingString(t *testing.T, in string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setting.toml")
	assert.Nil(t, os.WriteFile(path, []byte(in), 0644))
	core.ResetSetting()
	RegisterDefaultSettings()
	assert.Nil(t, core.ParseSettingFromPath(path))
}

func TestOptionsFromSettingDefaults(t *testing.T) {
	core.ResetSetting()
	RegisterDefaultSettings()
	assert.Equal(t, DefaultOptions(), OptionsFromSetting())
}

func TestOptionsFromSettingOverrides(t *testing.T) {
	parseSettingString(t, heredoc.Doc(`
		[com.scoring]
		gate_time_2q = 250.0

		[com.reorder]
		beam_width = 10
		max_rounds = 5
		workers = 2

		[com.router]
		xtalk_weight = 0.9
	`))

	opts := OptionsFromSetting()
	assert.Equal(t, 250.0, opts.Scoring.GateTime2Q)
	// Unset fields keep their defaults.
	assert.Equal(t, DefaultOptions().Scoring.GateTime1Q, opts.Scoring.GateTime1Q)
	assert.Equal(t, 10, opts.Reorder.BeamWidth)
	assert.Equal(t, 5, opts.Reorder.MaxRounds)
	assert.Equal(t, 2, opts.Reorder.Workers)
	assert.Equal(t, DefaultOptions().Reorder.Patience, opts.Reorder.Patience)
	assert.Equal(t, 0.9, opts.Router.XtalkWeight)
	assert.Equal(t, DefaultOptions().Router.DistWeight, opts.Router.DistWeight)
}

func TestOptionsFromSettingUninitialized(t *testing.T) {
	core.ResetSetting()
	assert.Equal(t, DefaultOptions(), OptionsFromSetting())
}
