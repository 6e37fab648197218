package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/TanaroSch/clipboard-anonymizer/internal/replace"
)

// DefaultKeyringService is the keyring service secrets are stored under.
const DefaultKeyringService = "ClipboardAnonymizer"

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid configuration")

// MonitorConfig holds the tunable timing of the clipboard monitor.
// Durations are milliseconds.
type MonitorConfig struct {
	ProcessingBackoffMs int `json:"processing_backoff_ms" yaml:"processing_backoff_ms"`
	DebounceMs          int `json:"debounce_ms" yaml:"debounce_ms"`
	ActiveIntervalMs    int `json:"active_interval_ms" yaml:"active_interval_ms"`
	ActiveWindowMs      int `json:"active_window_ms" yaml:"active_window_ms"`
	IdleIntervalMs      int `json:"idle_interval_ms" yaml:"idle_interval_ms"`
	IdleWindowMs        int `json:"idle_window_ms" yaml:"idle_window_ms"`
	DormantIntervalMs   int `json:"dormant_interval_ms" yaml:"dormant_interval_ms"`
	SoftErrorBackoffMs  int `json:"soft_error_backoff_ms" yaml:"soft_error_backoff_ms"`
	LockedBackoffStepMs int `json:"locked_backoff_step_ms" yaml:"locked_backoff_step_ms"`
	LockedCeiling       int `json:"locked_ceiling" yaml:"locked_ceiling"`
	LockedCooldownMs    int `json:"locked_cooldown_ms" yaml:"locked_cooldown_ms"`
	FailureBackoffMs    int `json:"failure_backoff_ms" yaml:"failure_backoff_ms"`
	FailureCeiling      int `json:"failure_ceiling" yaml:"failure_ceiling"`
}

// WriteBackConfig holds the delays around writing substituted text back.
type WriteBackConfig struct {
	SettleDelayMs    int `json:"settle_delay_ms" yaml:"settle_delay_ms"`
	PropagateDelayMs int `json:"propagate_delay_ms" yaml:"propagate_delay_ms"`
}

// SettleDelay is the pause before writing, letting the source application
// finish its own clipboard write.
func (w WriteBackConfig) SettleDelay() time.Duration { return ms(w.SettleDelayMs) }

// PropagateDelay is the pause after writing, before polling resumes.
func (w WriteBackConfig) PropagateDelay() time.Duration { return ms(w.PropagateDelayMs) }

// Config holds the application configuration
type Config struct {
	PairsFile        string            `json:"pairs_file" yaml:"pairs_file"`
	Mode             string            `json:"mode" yaml:"mode"`
	UseNotifications bool              `json:"use_notifications" yaml:"use_notifications"`
	WatchPairsFile   bool              `json:"watch_pairs_file" yaml:"watch_pairs_file"`
	ToggleHotkey     string            `json:"toggle_hotkey,omitempty" yaml:"toggle_hotkey,omitempty"`
	CycleModeHotkey  string            `json:"cycle_mode_hotkey,omitempty" yaml:"cycle_mode_hotkey,omitempty"`
	DiffContextLines int               `json:"diff_context_lines,omitempty" yaml:"diff_context_lines,omitempty"`
	Monitor          MonitorConfig     `json:"monitor" yaml:"monitor"`
	WriteBack        WriteBackConfig   `json:"write_back" yaml:"write_back"`
	Secrets          map[string]string `json:"secrets,omitempty" yaml:"secrets,omitempty"` // logical name -> "managed"

	// Runtime state, not serialized
	configPath      string
	keyringService  string
	resolvedSecrets map[string]string
}

// DefaultMonitorConfig returns the stock polling and backoff constants.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		ProcessingBackoffMs: 20,
		DebounceMs:          50,
		ActiveIntervalMs:    30,
		ActiveWindowMs:      5000,
		IdleIntervalMs:      100,
		IdleWindowMs:        30000,
		DormantIntervalMs:   200,
		SoftErrorBackoffMs:  50,
		LockedBackoffStepMs: 150,
		LockedCeiling:       5,
		LockedCooldownMs:    3000,
		FailureBackoffMs:    500,
		FailureCeiling:      5,
	}
}

// Default returns a configuration with every field at its stock value.
func Default() *Config {
	return &Config{
		PairsFile:        "pairs.txt",
		Mode:             replace.DefaultMode.String(),
		UseNotifications: true,
		WatchPairsFile:   true,
		ToggleHotkey:     "ctrl+shift+alt+p",
		CycleModeHotkey:  "ctrl+shift+alt+m",
		DiffContextLines: 3,
		Monitor:          DefaultMonitorConfig(),
		WriteBack:        WriteBackConfig{SettleDelayMs: 100, PropagateDelayMs: 200},
		Secrets:          make(map[string]string),
		keyringService:   DefaultKeyringService,
	}
}

// GetConfigPath returns the path to the configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// PairsPath resolves the pairs file relative to the config file directory.
func (c *Config) PairsPath() string {
	if c.PairsFile == "" || filepath.IsAbs(c.PairsFile) || c.configPath == "" {
		return c.PairsFile
	}
	return filepath.Join(filepath.Dir(c.configPath), c.PairsFile)
}

// ReplacementMode parses Mode. Load has already validated it.
func (c *Config) ReplacementMode() replace.Mode {
	m, err := replace.ParseMode(c.Mode)
	if err != nil {
		return replace.DefaultMode
	}
	return m
}

// GetResolvedSecrets returns the map of loaded secrets.
func (c *Config) GetResolvedSecrets() map[string]string {
	if c.resolvedSecrets == nil {
		return make(map[string]string)
	}
	return c.resolvedSecrets
}

// Load reads and parses the configuration file, creating a default one when
// it does not exist, and loads managed secrets from the OS keyring.
func Load(configPath string, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}
		logger.Info("Config file not found, creating default", zap.String("path", configPath))
		if createErr := CreateDefaultConfig(configPath); createErr != nil {
			return nil, fmt.Errorf("config file not found and failed to create default '%s': %w", configPath, createErr)
		}
		if data, err = os.ReadFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s' even after creating default: %w", configPath, err)
		}
	}

	// Start from defaults so fields missing from the file keep stock values.
	cfg := Default()
	if err := unmarshal(configPath, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file '%s': %w", configPath, err)
	}

	cfg.configPath = configPath
	cfg.keyringService = DefaultKeyringService
	cfg.resolvedSecrets = loadSecrets(cfg.keyringService, cfg.SecretNames(), logger)

	return cfg, nil
}

// Validate checks values that would make the monitor misbehave.
func (c *Config) Validate() error {
	if _, err := replace.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	m := c.Monitor
	positive := map[string]int{
		"monitor.processing_backoff_ms": m.ProcessingBackoffMs,
		"monitor.active_interval_ms":    m.ActiveIntervalMs,
		"monitor.idle_interval_ms":      m.IdleIntervalMs,
		"monitor.dormant_interval_ms":   m.DormantIntervalMs,
		"monitor.soft_error_backoff_ms": m.SoftErrorBackoffMs,
		"monitor.locked_ceiling":        m.LockedCeiling,
		"monitor.failure_ceiling":       m.FailureCeiling,
	}
	for name, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, name, v)
		}
	}
	nonNegative := map[string]int{
		"monitor.debounce_ms":            m.DebounceMs,
		"monitor.active_window_ms":       m.ActiveWindowMs,
		"monitor.idle_window_ms":         m.IdleWindowMs,
		"monitor.locked_backoff_step_ms": m.LockedBackoffStepMs,
		"monitor.locked_cooldown_ms":     m.LockedCooldownMs,
		"monitor.failure_backoff_ms":     m.FailureBackoffMs,
		"write_back.settle_delay_ms":     c.WriteBack.SettleDelayMs,
		"write_back.propagate_delay_ms":  c.WriteBack.PropagateDelayMs,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalid, name, v)
		}
	}
	if m.IdleWindowMs < m.ActiveWindowMs {
		return fmt.Errorf("%w: monitor.idle_window_ms (%d) is shorter than monitor.active_window_ms (%d)",
			ErrInvalid, m.IdleWindowMs, m.ActiveWindowMs)
	}
	return nil
}

// Save writes the current configuration back to its file.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config has no file path")
	}
	if c.Secrets == nil {
		c.Secrets = make(map[string]string)
	}
	data, err := marshal(c.configPath, c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.configPath, data, 0600)
}

// CreateDefaultConfig creates a default configuration file if none exists
func CreateDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("error checking config path '%s': %w", configPath, err)
	}

	data, err := marshal(configPath, Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create config directory '%s': %w", dir, err)
		}
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write default config file '%s': %w", configPath, err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func marshal(path string, cfg *Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(cfg)
	}
	return json.MarshalIndent(cfg, "", "  ")
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func (m MonitorConfig) ProcessingBackoff() time.Duration { return ms(m.ProcessingBackoffMs) }
func (m MonitorConfig) Debounce() time.Duration          { return ms(m.DebounceMs) }
func (m MonitorConfig) ActiveInterval() time.Duration    { return ms(m.ActiveIntervalMs) }
func (m MonitorConfig) ActiveWindow() time.Duration      { return ms(m.ActiveWindowMs) }
func (m MonitorConfig) IdleInterval() time.Duration      { return ms(m.IdleIntervalMs) }
func (m MonitorConfig) IdleWindow() time.Duration        { return ms(m.IdleWindowMs) }
func (m MonitorConfig) DormantInterval() time.Duration   { return ms(m.DormantIntervalMs) }
func (m MonitorConfig) SoftErrorBackoff() time.Duration  { return ms(m.SoftErrorBackoffMs) }
func (m MonitorConfig) LockedBackoffStep() time.Duration { return ms(m.LockedBackoffStepMs) }
func (m MonitorConfig) LockedCooldown() time.Duration    { return ms(m.LockedCooldownMs) }
func (m MonitorConfig) FailureBackoff() time.Duration    { return ms(m.FailureBackoffMs) }
