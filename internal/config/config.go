package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"gitbulk/internal/credentials"
	"gitbulk/internal/domain"
	"gitbulk/internal/eventbus"
	"gitbulk/internal/git"
)

const (
	appName         = "gitbulk"
	defaultFileName = "config.toml"
	defaultLogFile  = "gitbulk.log"
	defaultMaxLines = 1000
)

// Config represents the application configuration
type Config struct {
	BaseDir          string     `toml:"base_dir" yaml:"base_dir"`
	Exclude          []string   `toml:"exclude" yaml:"exclude"`
	Remote           string     `toml:"remote" yaml:"remote"`
	CredentialHelper string     `toml:"credential_helper" yaml:"credential_helper"`
	Log              LogConfig  `toml:"log" yaml:"log"`
	UI               UISettings `toml:"ui" yaml:"ui"`
}

// LogConfig controls the diagnostic log file and the log pane
type LogConfig struct {
	File     string `toml:"file" yaml:"file"`
	Level    string `toml:"level" yaml:"level"`
	MaxLines int    `toml:"max_lines" yaml:"max_lines"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowLog      bool `toml:"show_log" yaml:"show_log"`
	FilterDirty  bool `toml:"filter_dirty" yaml:"filter_dirty"`
	FilterBehind bool `toml:"filter_behind" yaml:"filter_behind"`
	FilterError  bool `toml:"filter_error" yaml:"filter_error"`
}

// Filters returns the startup filter predicates
func (u UISettings) Filters() domain.Filters {
	return domain.Filters{Dirty: u.FilterDirty, Behind: u.FilterBehind, Error: u.FilterError}
}

// RootDir returns BaseDir with a leading ~ expanded. An empty BaseDir
// means the working directory.
func (c *Config) RootDir() string {
	if c.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "."
		}
		return wd
	}
	return expandTilde(c.BaseDir)
}

// LogLevel parses Log.Level, falling back to info
func (c *Config) LogLevel() logger.Level {
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return logger.InfoLevel
	}
	return level
}

// GitOptions returns the engine options for this configuration
func (c *Config) GitOptions(creds git.CredentialSource) git.Options {
	return git.Options{RemoteName: c.Remote, Credentials: creds}
}

// Resolver returns a credential resolver for the configured helper
func (c *Config) Resolver() *credentials.Resolver {
	return credentials.NewResolver(c.CredentialHelper)
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service for path. An empty path selects
// config.toml in the user config directory.
func NewConfigService(path string, bus eventbus.EventBus) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{bus: bus, filePath: path}
}

// DefaultPath is $XDG_CONFIG_HOME/gitbulk/config.toml or its platform equivalent
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, appName, defaultFileName)
}

// DefaultLogPath is gitbulk.log in the user cache directory
func DefaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return defaultLogFile
	}
	return filepath.Join(dir, appName, defaultLogFile)
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load reads the service's file. A missing file yields the defaults.
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debugf("No config at %s, using defaults", cs.filePath)
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigLoadedEvent{BaseDir: cfg.BaseDir})
	}
	return cfg, nil
}

func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(domain.ConfigSavedEvent{})
	}
	return nil
}

// LoadFromPath decodes path as YAML when it ends in .yaml or .yml and as TOML
// otherwise. Fields absent from the file keep their defaults.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = toml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Remote:           git.DefaultRemote,
		CredentialHelper: credentials.DefaultHelper,
		Log: LogConfig{
			File:     DefaultLogPath(),
			Level:    "info",
			MaxLines: defaultMaxLines,
		},
		UI: UISettings{ShowLog: true},
	}
}

// normalize puts back defaults for values a file set to empty
func (c *Config) normalize() {
	if c.Remote == "" {
		c.Remote = git.DefaultRemote
	}
	if c.CredentialHelper == "" {
		c.CredentialHelper = credentials.DefaultHelper
	}
	if c.Log.MaxLines <= 0 {
		c.Log.MaxLines = defaultMaxLines
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogPath()
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
