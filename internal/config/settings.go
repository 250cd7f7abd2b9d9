// Package config resolves host paths and loads the user settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// File permission constants
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Settings keys as they appear in the JSON file.
const (
	KeyExcludeTargets      = "exclude_targets"
	KeyDownloadsDaysOld    = "downloads_days_old"
	KeyLargeFilesMB        = "large_files_mb"
	KeyBackupRetentionDays = "backup_retention_days"
)

// maxExcludeTargets caps the exclude list read from disk.
const maxExcludeTargets = 200

// Settings is the allowlisted user configuration.
type Settings struct {
	ExcludeTargets      []string `json:"exclude_targets" mapstructure:"exclude_targets" jsonschema:"maxItems=200,description=Target keys hidden from scan and cleanup"`
	DownloadsDaysOld    int      `json:"downloads_days_old" mapstructure:"downloads_days_old" jsonschema:"minimum=1,maximum=365,default=30,description=Age in days before a Downloads entry is offered for cleanup"`
	LargeFilesMB        int      `json:"large_files_mb" mapstructure:"large_files_mb" jsonschema:"minimum=1,maximum=102400,default=500,description=Targets at or above this size (MB) are highlighted in scans"`
	BackupRetentionDays int      `json:"backup_retention_days" mapstructure:"backup_retention_days" jsonschema:"minimum=1,maximum=365,default=7,description=Backup retention in days"`
}

// intRange describes the accepted bounds of a numeric setting.
type intRange struct {
	min, max int
}

var numericRanges = map[string]intRange{
	KeyDownloadsDaysOld:    {1, 365},
	KeyLargeFilesMB:        {1, 100 * 1024},
	KeyBackupRetentionDays: {1, 365},
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		ExcludeTargets:      []string{},
		DownloadsDaysOld:    30,
		LargeFilesMB:        500,
		BackupRetentionDays: 7,
	}
}

// CandidatePaths lists config files in lookup order. The first entry is the
// preferred location used by Init.
func CandidatePaths(env Env) []string {
	return []string{
		filepath.Join(env.Home, ".maccleanerrc"),
		filepath.Join(env.Home, ".config", "mac-cleaner-cli", "config.json"),
	}
}

// PreferredPath returns where Init writes a fresh config.
func PreferredPath(env Env) string {
	return CandidatePaths(env)[0]
}

// Exists reports whether any known config file exists.
func Exists(env Env) bool {
	for _, p := range CandidatePaths(env) {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}

// Load returns defaults overlaid with the first readable config file.
// Malformed files are skipped; invalid values keep their default.
func Load(env Env) Settings {
	for _, p := range CandidatePaths(env) {
		if info, err := os.Stat(p); err != nil || !info.Mode().IsRegular() {
			continue
		}
		if s, ok := loadFile(p); ok {
			return s
		}
	}
	return Defaults()
}

// loadFile reads one JSON config through viper and applies the allowlist.
func loadFile(path string) (Settings, bool) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, false
	}

	out := Defaults()
	if raw, ok := v.Get(KeyExcludeTargets).([]any); ok {
		out.ExcludeTargets = stringList(raw, maxExcludeTargets)
	}
	if n, ok := rangedInt(v.Get(KeyDownloadsDaysOld), numericRanges[KeyDownloadsDaysOld]); ok {
		out.DownloadsDaysOld = n
	}
	if n, ok := rangedInt(v.Get(KeyLargeFilesMB), numericRanges[KeyLargeFilesMB]); ok {
		out.LargeFilesMB = n
	}
	if n, ok := rangedInt(v.Get(KeyBackupRetentionDays), numericRanges[KeyBackupRetentionDays]); ok {
		out.BackupRetentionDays = n
	}
	return out, true
}

// stringList keeps only string elements, up to limit entries.
func stringList(raw []any, limit int) []string {
	out := []string{}
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		out = append(out, s)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// rangedInt accepts JSON numbers (decoded as float64) and truncates them to
// int before the range check.
func rangedInt(raw any, r intRange) (int, bool) {
	var n int
	switch v := raw.(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	default:
		return 0, false
	}
	if n < r.min || n > r.max {
		return 0, false
	}
	return n, true
}

// Save writes all allowlisted keys to path, creating parent directories.
func Save(s Settings, path string) error {
	if s.ExcludeTargets == nil {
		s.ExcludeTargets = []string{}
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), filePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Init writes the defaults to the preferred path and returns it.
func Init(env Env) (string, error) {
	p := PreferredPath(env)
	if err := Save(Defaults(), p); err != nil {
		return "", err
	}
	return p, nil
}

// Excluded returns the exclude list as a set.
func (s Settings) Excluded() map[string]bool {
	set := make(map[string]bool, len(s.ExcludeTargets))
	for _, k := range s.ExcludeTargets {
		set[k] = true
	}
	return set
}
