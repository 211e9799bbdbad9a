package core

type Conf struct {
	Version            string `long:"version" description:"version of the optimizer" env:"QNS_VERSION"`
	DevMode            bool   `long:"dev-mode" description:"run in dev mode" env:"QNS_DEV_MODE"`
	DisableStdoutLog   bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"QNS_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"QNS_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"QNS_LOG_DIR"`
	LogLevel           string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QNS_LOG_LEVEL"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QNS_LOG_ROTATION_MAX_DAYS"`
	ProfilePath        string `long:"profile-path" description:"noise profile file path" default:"./noise_profile.toml" env:"QNS_PROFILE_PATH"`
	SettingPath        string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"QNS_SETTING_PATH"`
}
