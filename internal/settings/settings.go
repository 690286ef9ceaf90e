package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultPath is used when TELEGRAM_SETTINGS_PATH is not set
const DefaultPath = "data/telegram-settings.json"

// Settings is the persisted bot runtime configuration
type Settings struct {
	Token                 string `json:"token"`
	AllowedUserID         *int64 `json:"allowedUserId,omitempty"`
	TimezoneOffsetMinutes *int   `json:"timezoneOffsetMinutes,omitempty"`
	TimezoneCity          string `json:"timezoneCity,omitempty"`
	TimezoneIANA          string `json:"timezoneIana,omitempty"`
}

// Seed holds the environment-provided values used on first run
type Seed struct {
	Token                 string
	AllowedUserID         *int64
	TimezoneOffsetMinutes *int
	TimezoneCity          string
	TimezoneIANA          string
}

// Store reads and writes the settings document
type Store struct {
	path   string
	logger *zap.Logger
}

// NewStore creates a store for the document at path
func NewStore(path string, logger *zap.Logger) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: filepath.Clean(path), logger: logger}
}

// Path returns the location of the settings document
func (s *Store) Path() string {
	return s.path
}

// Read returns the stored settings; false means the bot is not configured yet
func (s *Store) Read() (*Settings, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read settings", zap.String("path", s.path), zap.Error(err))
		}
		return nil, false
	}

	var st Settings
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("Failed to parse settings", zap.String("path", s.path), zap.Error(err))
		return nil, false
	}
	if strings.TrimSpace(st.Token) == "" {
		return nil, false
	}
	return &st, true
}

// Write replaces the settings document
func (s *Store) Write(st *Settings) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	// Replace via rename so readers never observe a half-written file
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// Ensure returns stored settings, or seeds and persists them from the environment.
// It returns nil when no token is available from either source.
func (s *Store) Ensure(seed Seed) (*Settings, error) {
	if st, ok := s.Read(); ok {
		return st, nil
	}

	token := strings.TrimSpace(seed.Token)
	if token == "" {
		return nil, nil
	}

	st := &Settings{
		Token:                 token,
		AllowedUserID:         seed.AllowedUserID,
		TimezoneOffsetMinutes: seed.TimezoneOffsetMinutes,
		TimezoneCity:          strings.TrimSpace(seed.TimezoneCity),
		TimezoneIANA:          strings.TrimSpace(seed.TimezoneIANA),
	}
	if st.TimezoneIANA == "" && st.TimezoneCity != "" {
		if zone, ok := ResolveCity(st.TimezoneCity); ok {
			st.TimezoneIANA = zone
		}
	}

	if err := s.Write(st); err != nil {
		return nil, err
	}
	s.logger.Info("Settings seeded from environment", zap.String("path", s.path))
	return st, nil
}
