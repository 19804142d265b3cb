package models

import (
	"database/sql"
	"fmt"
	"os"
)

// SettingDefinition describes one configurable key: its env-var override,
// and its built-in default. Settings resolve env var → database → default.
type SettingDefinition struct {
	Key     string
	EnvVar  string
	Default string
}

var settingDefinitions = []SettingDefinition{
	{Key: "llm.provider", EnvVar: "FITCOACH_LLM_PROVIDER"},
	{Key: "llm.model", EnvVar: "FITCOACH_LLM_MODEL"},
	{Key: "llm.api_key", EnvVar: "FITCOACH_LLM_API_KEY"},
	{Key: "llm.base_url", EnvVar: "FITCOACH_LLM_BASE_URL"},
	{Key: "llm.temperature", EnvVar: "FITCOACH_LLM_TEMPERATURE", Default: "0.7"},
	{Key: "coach.language", EnvVar: "FITCOACH_LANGUAGE", Default: "Japanese"},
}

func findDefinition(key string) *SettingDefinition {
	for i := range settingDefinitions {
		if settingDefinitions[i].Key == key {
			return &settingDefinitions[i]
		}
	}
	return nil
}

// GetSetting resolves a setting value. Unknown keys return "".
func GetSetting(db *sql.DB, key string) string {
	def := findDefinition(key)
	if def == nil {
		return ""
	}

	// 1. Environment variable always wins.
	if def.EnvVar != "" {
		if v := os.Getenv(def.EnvVar); v != "" {
			return v
		}
	}

	// 2. Database setting.
	var raw string
	if err := db.QueryRow(`SELECT value FROM app_settings WHERE key = ?`, key).Scan(&raw); err == nil {
		return raw
	}

	// 3. Built-in default.
	return def.Default
}

// SetSetting stores a setting value in the database.
func SetSetting(db *sql.DB, key, value string) error {
	if findDefinition(key) == nil {
		return fmt.Errorf("models: unknown setting %q", key)
	}
	_, err := db.Exec(`
		INSERT INTO app_settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("models: set setting %q: %w", key, err)
	}
	return nil
}

// IsCoachConfigured returns true if an LLM provider is configured.
func IsCoachConfigured(db *sql.DB) bool {
	return GetSetting(db, "llm.provider") != ""
}
