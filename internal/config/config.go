package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Поддерживаемые погодные провайдеры.
const (
	WeatherTomorrow   = "tomorrow.io"
	WeatherWeatherAPI = "weatherapi"
)

// Config хранит настройки одного запуска обновления документа.
type Config struct {
	RepoDir      string `json:"repo_dir" yaml:"repo_dir"`
	Document     string `json:"document" yaml:"document"`
	Title        string `json:"title" yaml:"title"`
	Location     string `json:"location" yaml:"location"`
	LocationName string `json:"location_name" yaml:"location_name"`
	Timezone     string `json:"timezone" yaml:"timezone"`
	PersonaFile  string `json:"persona_file" yaml:"persona_file"`
	HistoryDepth int    `json:"history_depth" yaml:"history_depth"`

	RunTimeout  int `json:"run_timeout" yaml:"run_timeout"`   // секунды
	HTTPTimeout int `json:"http_timeout" yaml:"http_timeout"` // секунды

	Weather WeatherConfig `json:"weather" yaml:"weather"`
	Bing    BingConfig    `json:"bing" yaml:"bing"`
	Cat     CatConfig     `json:"cat" yaml:"cat"`
	Search  SearchConfig  `json:"search" yaml:"search"`
	LLM     LLMConfig     `json:"llm" yaml:"llm"`
	Git     GitConfig     `json:"git" yaml:"git"`
	Ledger  LedgerConfig  `json:"ledger" yaml:"ledger"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

type WeatherConfig struct {
	Provider string `json:"provider" yaml:"provider"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

type BingConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Country string `json:"country" yaml:"country"`
}

type CatConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key" yaml:"api_key"`
}

type SearchConfig struct {
	BaseURL    string `json:"base_url" yaml:"base_url"`
	APIKey     string `json:"api_key" yaml:"api_key"`
	MaxResults int    `json:"max_results" yaml:"max_results"`
}

type LLMConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"api_key" yaml:"api_key"`
	Model   string `json:"model" yaml:"model"`
}

type GitConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Push        bool   `json:"push" yaml:"push"`
	Remote      string `json:"remote" yaml:"remote"`
	Branch      string `json:"branch" yaml:"branch"`
	Username    string `json:"username" yaml:"username"`
	Token       string `json:"token" yaml:"token"`
	AuthorName  string `json:"author_name" yaml:"author_name"`
	AuthorEmail string `json:"author_email" yaml:"author_email"`
	MaxCommits  int    `json:"max_commits" yaml:"max_commits"`
}

type LedgerConfig struct {
	DSN string `json:"dsn" yaml:"dsn"`
}

type MetricsConfig struct {
	TextfilePath string `json:"textfile_path" yaml:"textfile_path"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Validate проверяет обязательные поля и диапазоны значений.
func (cfg *Config) Validate() error {
	if cfg.Document == "" {
		return errors.New("document path must be set")
	}
	if filepath.IsAbs(cfg.Document) || strings.HasPrefix(filepath.Clean(cfg.Document), "..") {
		return fmt.Errorf("document must be relative to repo_dir: %s", cfg.Document)
	}
	if cfg.Location == "" {
		return errors.New("location must be set")
	}
	if cfg.RunTimeout < 1 {
		return errors.New("run timeout must be ≥ 1 second")
	}
	if cfg.HTTPTimeout < 1 {
		return errors.New("http timeout must be ≥ 1 second")
	}
	if cfg.HistoryDepth < 0 {
		return errors.New("history depth must not be negative")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone: %s", cfg.Timezone)
	}
	switch cfg.Weather.Provider {
	case WeatherTomorrow, WeatherWeatherAPI:
	default:
		return fmt.Errorf("unknown weather provider: %s", cfg.Weather.Provider)
	}
	if cfg.LLM.APIKey == "" {
		return errors.New("llm api key must be set")
	}
	if cfg.LLM.Model == "" {
		return errors.New("llm model must be set")
	}
	for name, u := range map[string]string{
		"weather": cfg.Weather.BaseURL,
		"bing":    cfg.Bing.BaseURL,
		"cat":     cfg.Cat.BaseURL,
		"search":  cfg.Search.BaseURL,
		"llm":     cfg.LLM.BaseURL,
	} {
		if _, err := url.ParseRequestURI(u); err != nil {
			return fmt.Errorf("invalid %s URL: %s", name, u)
		}
	}
	if cfg.Git.Push {
		if !cfg.Git.Enabled {
			return errors.New("git push requires git to be enabled")
		}
		if _, err := url.ParseRequestURI(cfg.Git.Remote); err != nil {
			return fmt.Errorf("invalid git remote: %s", cfg.Git.Remote)
		}
	}
	if cfg.Git.MaxCommits < 0 {
		return errors.New("max commits must not be negative")
	}
	return nil
}

// ApplyDefaults заполняет незаданные поля значениями по умолчанию.
func (cfg *Config) ApplyDefaults() {
	setDefault(&cfg.RepoDir, ".")
	setDefault(&cfg.Document, "README.md")
	setDefault(&cfg.Title, "memo")
	setDefault(&cfg.Timezone, "Local")
	if cfg.LocationName == "" {
		cfg.LocationName = strings.TrimSpace(strings.Split(cfg.Location, ",")[0])
	}
	if cfg.HistoryDepth == 0 {
		cfg.HistoryDepth = 10
	}
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = 180
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 20
	}

	setDefault(&cfg.Weather.Provider, WeatherTomorrow)
	if cfg.Weather.BaseURL == "" {
		if cfg.Weather.Provider == WeatherWeatherAPI {
			cfg.Weather.BaseURL = "https://api.weatherapi.com"
		} else {
			cfg.Weather.BaseURL = "https://api.tomorrow.io"
		}
	}
	setDefault(&cfg.Bing.BaseURL, "https://peapix.com")
	setDefault(&cfg.Bing.Country, "ca")
	setDefault(&cfg.Cat.BaseURL, "https://api.thecatapi.com")
	setDefault(&cfg.Search.BaseURL, "https://api.tavily.com")
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 8
	}
	setDefault(&cfg.LLM.BaseURL, "https://generativelanguage.googleapis.com/v1beta/openai")
	setDefault(&cfg.LLM.Model, "gemini-2.5-flash")

	setDefault(&cfg.Git.Branch, "main")
	setDefault(&cfg.Git.AuthorName, "readme-updater")
	setDefault(&cfg.Git.AuthorEmail, "readme-updater@users.noreply.github.com")
	if cfg.Git.MaxCommits == 0 {
		cfg.Git.MaxCommits = 720
	}
	setDefault(&cfg.Ledger.DSN, "data/runs.db")
	setDefault(&cfg.Log.Level, "info")
	setDefault(&cfg.Log.Format, "json")
}

// ApplyEnv переопределяет секреты и пути значениями из окружения.
func (cfg *Config) ApplyEnv() {
	setFromEnv(&cfg.RepoDir, "REPO_DIR")
	setFromEnv(&cfg.Location, "LOCATION")
	switch cfg.Weather.Provider {
	case WeatherWeatherAPI:
		setFromEnv(&cfg.Weather.APIKey, "WEATHERAPI_API_KEY", "FREEWEATHER_API_KEY")
	default:
		setFromEnv(&cfg.Weather.APIKey, "TOMORROWIO_API_KEY")
	}
	setFromEnv(&cfg.Cat.APIKey, "CAT_API_KEY")
	setFromEnv(&cfg.Search.APIKey, "TAVILY_API_KEY")
	setFromEnv(&cfg.LLM.APIKey, "LLM_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY")
	setFromEnv(&cfg.LLM.BaseURL, "LLM_BASE_URL")
	setFromEnv(&cfg.LLM.Model, "LLM_MODEL")
	setFromEnv(&cfg.Git.Username, "GITHUB_USERNAME")
	setFromEnv(&cfg.Git.Token, "GITHUB_API_KEY")
	setFromEnv(&cfg.Ledger.DSN, "LEDGER_DSN")
	setFromEnv(&cfg.Metrics.TextfilePath, "METRICS_TEXTFILE")
	setFromEnv(&cfg.Log.Level, "LOG_LEVEL")
}

// Timeouts возвращает таймауты запуска и HTTP-запросов.
func (cfg *Config) Timeouts() (run, http time.Duration) {
	return time.Duration(cfg.RunTimeout) * time.Second, time.Duration(cfg.HTTPTimeout) * time.Second
}

// LoadConfig читает JSON- или YAML-файл по пути path (формат по расширению) и декодирует его в Config.
// Пустой path означает конфигурацию только из окружения.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		return &cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, err
		}
	default:
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Load загружает .env, файл конфигурации и окружение, затем проверяет результат.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func setFromEnv(field *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*field = v
			return
		}
	}
}
