// Package config holds the appliance settings and their on-disk TOML form.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// CfgFile is the config file name inside the appliance data directory.
const CfgFile = "clockd.toml"

// Values are the tunable settings of the clock.
type Values struct {
	Timezone        string `toml:"timezone"`
	NTPServer       string `toml:"ntp_server"`
	SnoozeMinutes   int    `toml:"snooze_minutes"`
	NoSyncThreshold int    `toml:"no_sync_threshold"`
	AlarmDefaultOn  bool   `toml:"alarm_default_on"`
	DebugLogging    bool   `toml:"debug_logging"`
}

// Defaults returns the factory settings. The timezone is a central European
// POSIX descriptor and the NTP source is the public pool.
func Defaults() Values {
	return Values{
		Timezone:        "CET-1CES-2,M3.5.0/2,M10.5.0/3",
		NTPServer:       "pool.ntp.org",
		SnoozeMinutes:   5,
		NoSyncThreshold: 121,
		AlarmDefaultOn:  true,
	}
}

// Load reads the config file at path. A missing file is not an error: the
// defaults are written to disk and returned. Fields absent from the file
// retain their default values.
func Load(path string) (Values, error) {
	vals := Defaults()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Info().Msgf("no config at %s, saving defaults", path)
		if err := Save(path, vals); err != nil {
			return vals, err
		}
		return vals, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return vals, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, &vals); err != nil {
		return vals, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	vals.clamp()
	return vals, nil
}

// Save writes vals to path, creating the parent directory if needed.
func Save(path string, vals Values) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// clamp forces out-of-range numeric settings back to usable values. Snooze
// must stay within a single hour so the rescheduled alarm time needs only a
// minute field adjustment, and the fallback sync threshold must be positive.
func (v *Values) clamp() {
	if v.SnoozeMinutes < 1 || v.SnoozeMinutes > 59 {
		log.Warn().Msgf("snooze_minutes %d out of range, using %d",
			v.SnoozeMinutes, Defaults().SnoozeMinutes)
		v.SnoozeMinutes = Defaults().SnoozeMinutes
	}
	if v.NoSyncThreshold < 1 {
		log.Warn().Msgf("no_sync_threshold %d out of range, using %d",
			v.NoSyncThreshold, Defaults().NoSyncThreshold)
		v.NoSyncThreshold = Defaults().NoSyncThreshold
	}
}
