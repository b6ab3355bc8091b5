// Package config loads encomment settings from, in increasing priority,
// built-in defaults, an encomment.yaml file, ENCOMMENT_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName   = "encomment"
	EnvPrefix = "ENCOMMENT"
)

type Config struct {
	Services      []string      `mapstructure:"services"`
	Source        string        `mapstructure:"source"`
	Target        string        `mapstructure:"target"`
	DBPath        string        `mapstructure:"db"`
	NoCache       bool          `mapstructure:"no_cache"`
	MaxRetries    int           `mapstructure:"max_retries"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxChars      int           `mapstructure:"max_chars"`
	Validate      bool          `mapstructure:"validate"`
	Refine        bool          `mapstructure:"refine"`
	FlattenMarkup bool          `mapstructure:"flatten_markup"`
	Output        string        `mapstructure:"output"`

	Log        LogConfig        `mapstructure:"log"`
	Google     GoogleConfig     `mapstructure:"google"`
	Ollama     OllamaConfig     `mapstructure:"ollama"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Systran    SystranConfig    `mapstructure:"systran"`
	MyMemory   MyMemoryConfig   `mapstructure:"mymemory"`
	Refiner    RefinerConfig    `mapstructure:"refiner"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type GoogleConfig struct {
	Credentials string `mapstructure:"credentials"`
	Project     string `mapstructure:"project"`
}

type OllamaConfig struct {
	URL    string   `mapstructure:"url"`
	Models []string `mapstructure:"models"`
}

type OpenRouterConfig struct {
	Key    string   `mapstructure:"key"`
	Models []string `mapstructure:"models"`
}

type SystranConfig struct {
	Key string `mapstructure:"key"`
}

type MyMemoryConfig struct {
	Email string `mapstructure:"email"`
}

type RefinerConfig struct {
	Model string `mapstructure:"model"`
	URL   string `mapstructure:"url"`
}

// Default returns the configuration used when nothing else is set. With no
// services the annotator writes placeholder lines only.
func Default() *Config {
	return &Config{
		Source:     "ja",
		Target:     "en",
		DBPath:     defaultDBPath(),
		MaxRetries: 3,
		Timeout:    60 * time.Second,
		Log:        LogConfig{Level: "info"},
		Ollama:     OllamaConfig{URL: "http://localhost:11434"},
		Refiner:    RefinerConfig{Model: "llama3.1:8b", URL: "http://localhost:11434"},
	}
}

func defaultDBPath() string {
	dir, err := UserDataDir()
	if err != nil {
		return "./data/" + AppName + ".db"
	}
	return filepath.Join(dir, AppName+".db")
}

// UserDataDir returns the per-user directory holding the translation memory.
func UserDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"services":          "services",
	"source":            "source",
	"target":            "target",
	"db":                "db",
	"no-cache":          "no_cache",
	"max-retries":       "max_retries",
	"timeout":           "timeout",
	"max-chars":         "max_chars",
	"validate":          "validate",
	"refine":            "refine",
	"flatten-markup":    "flatten_markup",
	"output":            "output",
	"log-level":         "log.level",
	"credentials":       "google.credentials",
	"project":           "google.project",
	"ollama-url":        "ollama.url",
	"ollama-models":     "ollama.models",
	"openrouter-key":    "openrouter.key",
	"openrouter-models": "openrouter.models",
	"systran-key":       "systran.key",
	"mymemory-email":    "mymemory.email",
	"refiner-model":     "refiner.model",
	"refiner-url":       "refiner.url",
}

// RegisterFlags defines every configuration flag on fs with the defaults
// from Default.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()

	fs.StringSlice("services", d.Services, "Translation services to try in order (google, mymemory, ollama, openrouter, systran)")
	fs.String("source", d.Source, "Source language code")
	fs.String("target", d.Target, "Target language code")
	fs.String("db", d.DBPath, "Translation memory database path")
	fs.Bool("no-cache", d.NoCache, "Disable the translation memory")
	fs.Int("max-retries", d.MaxRetries, "Attempts per service")
	fs.Duration("timeout", d.Timeout, "Timeout for a single service attempt")
	fs.Int("max-chars", d.MaxChars, "Split comments longer than this many characters (0 = no limit)")
	fs.Bool("validate", d.Validate, "Reject translations that are not in the target language")
	fs.Bool("refine", d.Refine, "Rewrite translations with the Ollama refiner")
	fs.Bool("flatten-markup", d.FlattenMarkup, "Translate the plain text of markdown in block comments and docstrings")
	fs.StringP("output", "o", d.Output, "Output file (default <input>.encommented)")
	fs.String("log-level", d.Log.Level, "Log level (debug, info, warn, error)")
	fs.String("credentials", d.Google.Credentials, "Google Cloud credentials file")
	fs.String("project", d.Google.Project, "Google Cloud project ID")
	fs.String("ollama-url", d.Ollama.URL, "Ollama base URL")
	fs.StringSlice("ollama-models", d.Ollama.Models, "Ollama models to choose from")
	fs.String("openrouter-key", d.OpenRouter.Key, "OpenRouter API key")
	fs.StringSlice("openrouter-models", d.OpenRouter.Models, "OpenRouter models to choose from")
	fs.String("systran-key", d.Systran.Key, "Systran (RapidAPI) key")
	fs.String("mymemory-email", d.MyMemory.Email, "E-mail sent to MyMemory for a higher quota")
	fs.String("refiner-model", d.Refiner.Model, "Ollama model used by the refiner")
	fs.String("refiner-url", d.Refiner.URL, "Ollama base URL used by the refiner")
}

// configSearchPaths lists config directories, lowest priority first.
func configSearchPaths() []string {
	paths := []string{filepath.Join("/etc", AppName)}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", AppName))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, cwd)
	}

	return paths
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName(AppName)
	v.SetConfigType("yaml")
	for _, path := range configSearchPaths() {
		v.AddConfigPath(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func setViperDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("services", c.Services)
	v.SetDefault("source", c.Source)
	v.SetDefault("target", c.Target)
	v.SetDefault("db", c.DBPath)
	v.SetDefault("no_cache", c.NoCache)
	v.SetDefault("max_retries", c.MaxRetries)
	v.SetDefault("timeout", c.Timeout)
	v.SetDefault("max_chars", c.MaxChars)
	v.SetDefault("validate", c.Validate)
	v.SetDefault("refine", c.Refine)
	v.SetDefault("flatten_markup", c.FlattenMarkup)
	v.SetDefault("output", c.Output)
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("google.credentials", c.Google.Credentials)
	v.SetDefault("google.project", c.Google.Project)
	v.SetDefault("ollama.url", c.Ollama.URL)
	v.SetDefault("ollama.models", c.Ollama.Models)
	v.SetDefault("openrouter.key", c.OpenRouter.Key)
	v.SetDefault("openrouter.models", c.OpenRouter.Models)
	v.SetDefault("systran.key", c.Systran.Key)
	v.SetDefault("mymemory.email", c.MyMemory.Email)
	v.SetDefault("refiner.model", c.Refiner.Model)
	v.SetDefault("refiner.url", c.Refiner.URL)
}

// Load builds the configuration. cfgFile overrides the search path; fs may
// be nil, otherwise its flags are bound to their keys and win when set.
func Load(cfgFile string, fs *pflag.FlagSet) (*Config, error) {
	v := newViper()
	setViperDefaults(v, Default())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Services = splitList(cfg.Services)
	cfg.Ollama.Models = splitList(cfg.Ollama.Models)
	cfg.OpenRouter.Models = splitList(cfg.OpenRouter.Models)

	return &cfg, nil
}

// splitList flattens comma-separated items, which is how lists arrive from
// environment variables.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
