//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfDefaults(t *testing.T) {
	conf, err := LoadConf([]string{})
	assert.Nil(t, err)
	assert.False(t, conf.DevMode)
	assert.Equal(t, "info", conf.LogLevel)
	assert.Equal(t, 7, conf.LogRotationMaxDays)
	assert.Equal(t, "./setting/setting.toml", conf.SettingPath)
	assert.Equal(t, "./noise_profile.toml", conf.ProfilePath)
}

func TestLoadConfFlags(t *testing.T) {
	conf, err := LoadConf([]string{
		"--dev-mode",
		"--log-level", "debug",
		"--profile-path", "/tmp/profile.toml",
	})
	assert.Nil(t, err)
	assert.True(t, conf.DevMode)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, "/tmp/profile.toml", conf.ProfilePath)
}

func TestLoadConfRejectsBadChoice(t *testing.T) {
	_, err := LoadConf([]string{"--log-level", "loud"})
	assert.Error(t, err)
}
