/*
Package config manages TOML config for predict services.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/predict/internal/utils"
	"github.com/bastiangx/predict/pkg/dictionary"
	"github.com/bastiangx/predict/pkg/session"
	"github.com/bastiangx/predict/pkg/suggest"
	"github.com/charmbracelet/log"
)

// FileName is the config file looked up in the config directory.
const FileName = "predict.toml"

// Config holds the entire config structure
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Keys   KeysConfig   `toml:"keys"`
	Data   DataConfig   `toml:"data"`
}

// EngineConfig bounds lookups and sizes the candidate page.
type EngineConfig struct {
	MaxWords   int `toml:"max_words"`
	MaxSymbols int `toml:"max_symbols"`
	PageSize   int `toml:"page_size"`
}

// KeysConfig holds the keys that, with Control, switch modes.
type KeysConfig struct {
	SymbolMode string `toml:"symbol_mode"`
	WordMode   string `toml:"word_mode"`
}

// DataConfig locates the artifacts. Relative file names resolve against Dir.
type DataConfig struct {
	Dir        string `toml:"dir"`
	Dictionary string `toml:"dictionary"`
	Shortcodes string `toml:"shortcodes"`
	Symbols    string `toml:"symbols"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "predict")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "predict")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for predict.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/predict/predict.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	limits := suggest.DefaultLimits()
	return &Config{
		Engine: EngineConfig{
			MaxWords:   limits.MaxWords,
			MaxSymbols: limits.MaxSymbols,
			PageSize:   5,
		},
		Keys: KeysConfig{
			SymbolMode: "e",
			WordMode:   "w",
		},
		Data: DataConfig{
			Dir:        "data",
			Dictionary: dictionary.DictionaryFile,
			Shortcodes: dictionary.ShortcodesFile,
			Symbols:    dictionary.SymbolsFile,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Values that fail validation are
// replaced by their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config, err = tryPartialParse(configPath)
		if err != nil {
			return nil, err
		}
	}
	config.sanitize()
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if engineSection, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(engineSection, &config.Engine)
	}
	if keysSection, ok := utils.ExtractSection(tempConfig, "keys"); ok {
		extractKeysConfig(keysSection, &config.Keys)
	}
	if dataSection, ok := utils.ExtractSection(tempConfig, "data"); ok {
		extractDataConfig(dataSection, &config.Data)
	}
	return config, nil
}

// extractEngineConfig extracts engine configuration from a map
func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		engine.MaxWords = val
	}
	if val, ok := utils.ExtractInt64(data, "max_symbols"); ok {
		engine.MaxSymbols = val
	}
	if val, ok := utils.ExtractInt64(data, "page_size"); ok {
		engine.PageSize = val
	}
}

func extractKeysConfig(data map[string]any, keys *KeysConfig) {
	if val, ok := utils.ExtractString(data, "symbol_mode"); ok {
		keys.SymbolMode = val
	}
	if val, ok := utils.ExtractString(data, "word_mode"); ok {
		keys.WordMode = val
	}
}

func extractDataConfig(data map[string]any, d *DataConfig) {
	if val, ok := utils.ExtractString(data, "dir"); ok {
		d.Dir = val
	}
	if val, ok := utils.ExtractString(data, "dictionary"); ok {
		d.Dictionary = val
	}
	if val, ok := utils.ExtractString(data, "shortcodes"); ok {
		d.Shortcodes = val
	}
	if val, ok := utils.ExtractString(data, "symbols"); ok {
		d.Symbols = val
	}
}

// Validate reports every invalid value.
func (c *Config) Validate() error {
	var errs []error
	if c.Engine.MaxWords <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_words must be positive, got %d", c.Engine.MaxWords))
	}
	if c.Engine.MaxSymbols <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_symbols must be positive, got %d", c.Engine.MaxSymbols))
	}
	if c.Engine.PageSize <= 0 || c.Engine.PageSize > 16 {
		errs = append(errs, fmt.Errorf("engine.page_size must be between 1 and 16, got %d", c.Engine.PageSize))
	}
	symbolKey, err := parseKey(c.Keys.SymbolMode)
	if err != nil {
		errs = append(errs, fmt.Errorf("keys.symbol_mode: %w", err))
	}
	wordKey, err := parseKey(c.Keys.WordMode)
	if err != nil {
		errs = append(errs, fmt.Errorf("keys.word_mode: %w", err))
	}
	if symbolKey != 0 && symbolKey == wordKey {
		errs = append(errs, fmt.Errorf("keys.symbol_mode and keys.word_mode are both %q", c.Keys.SymbolMode))
	}
	return errors.Join(errs...)
}

// sanitize puts back the default of every value Validate would reject.
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Engine.MaxWords <= 0 {
		log.Warnf("Invalid engine.max_words %d, using %d", c.Engine.MaxWords, def.Engine.MaxWords)
		c.Engine.MaxWords = def.Engine.MaxWords
	}
	if c.Engine.MaxSymbols <= 0 {
		log.Warnf("Invalid engine.max_symbols %d, using %d", c.Engine.MaxSymbols, def.Engine.MaxSymbols)
		c.Engine.MaxSymbols = def.Engine.MaxSymbols
	}
	if c.Engine.PageSize <= 0 || c.Engine.PageSize > 16 {
		log.Warnf("Invalid engine.page_size %d, using %d", c.Engine.PageSize, def.Engine.PageSize)
		c.Engine.PageSize = def.Engine.PageSize
	}
	if _, err := parseKey(c.Keys.SymbolMode); err != nil {
		log.Warnf("Invalid keys.symbol_mode: %v", err)
		c.Keys.SymbolMode = def.Keys.SymbolMode
	}
	if _, err := parseKey(c.Keys.WordMode); err != nil {
		log.Warnf("Invalid keys.word_mode: %v", err)
		c.Keys.WordMode = def.Keys.WordMode
	}
	if c.Keys.SymbolMode == c.Keys.WordMode {
		log.Warnf("keys.symbol_mode and keys.word_mode collide, using defaults")
		c.Keys = def.Keys
	}
}

// Limits returns the lookup caps.
func (c *Config) Limits() suggest.Limits {
	return suggest.Limits{MaxWords: c.Engine.MaxWords, MaxSymbols: c.Engine.MaxSymbols}
}

// Bindings returns the mode chords.
func (c *Config) Bindings() session.Bindings {
	b := session.DefaultBindings()
	if k, err := parseKey(c.Keys.SymbolMode); err == nil {
		b.SymbolMode = k
	}
	if k, err := parseKey(c.Keys.WordMode); err == nil {
		b.WordMode = k
	}
	return b
}

// Paths resolves the artifact files against dataDir, or against Data.Dir
// when dataDir is empty.
func (c *Config) Paths(dataDir string) dictionary.Paths {
	if dataDir == "" {
		dataDir = c.Data.Dir
	}
	resolve := func(name, fallback string) string {
		if name == "" {
			name = fallback
		}
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(dataDir, name)
	}
	return dictionary.Paths{
		Dictionary: resolve(c.Data.Dictionary, dictionary.DictionaryFile),
		Shortcodes: resolve(c.Data.Shortcodes, dictionary.ShortcodesFile),
		Symbols:    resolve(c.Data.Symbols, dictionary.SymbolsFile),
	}
}

// parseKey accepts a single lowercase printable ASCII character.
func parseKey(key string) (uint32, error) {
	if len(key) != 1 || key[0] <= ' ' || key[0] > '~' {
		return 0, fmt.Errorf("want a single printable character, got %q", key)
	}
	if key[0] >= 'A' && key[0] <= 'Z' {
		return 0, fmt.Errorf("use lowercase, got %q", key)
	}
	return uint32(key[0]), nil
}

// RebuildConfigFile force creates a new predict.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the engine values and saves to file
func (c *Config) Update(configPath string, maxWords, maxSymbols, pageSize *int) error {
	engine := &c.Engine
	if maxWords != nil {
		engine.MaxWords = *maxWords
	}
	if maxSymbols != nil {
		engine.MaxSymbols = *maxSymbols
	}
	if pageSize != nil {
		engine.PageSize = *pageSize
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return SaveConfig(c, configPath)
}
