package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"readme_updater/internal/config"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)
	return path
}

func validConfig() *config.Config {
	cfg := &config.Config{
		Location: "Zyuzino,Moscow,Russia",
		LLM:      config.LLMConfig{APIKey: "secret"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestLoadConfig_JSON(t *testing.T) {
	json := `{
		"location": "Zyuzino,Moscow,Russia",
		"document": "notes/README.md",
		"run_timeout": 60,
		"weather": {"provider": "weatherapi"},
		"git": {"enabled": true, "branch": "trunk"}
	}`
	path := writeTempConfig(t, "config.json", json)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "Zyuzino,Moscow,Russia", cfg.Location)
	require.Equal(t, "notes/README.md", cfg.Document)
	require.Equal(t, 60, cfg.RunTimeout)
	require.Equal(t, config.WeatherWeatherAPI, cfg.Weather.Provider)
	require.True(t, cfg.Git.Enabled)
	require.Equal(t, "trunk", cfg.Git.Branch)
}

func TestLoadConfig_YAML(t *testing.T) {
	yml := `
location: Moscow
history_depth: 5
search:
  max_results: 3
llm:
  model: gpt-4o-mini
`
	path := writeTempConfig(t, "config.yaml", yml)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "Moscow", cfg.Location)
	require.Equal(t, 5, cfg.HistoryDepth)
	require.Equal(t, 3, cfg.Search.MaxResults)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := config.LoadConfig("/nonexistent/config.json")
	require.Error(t, err)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeTempConfig(t, "config.json", `{ invalid json }`)
	_, err := config.LoadConfig(path)
	require.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	require.Equal(t, "README.md", cfg.Document)
	require.Equal(t, "Zyuzino", cfg.LocationName)
	require.Equal(t, config.WeatherTomorrow, cfg.Weather.Provider)
	require.Equal(t, "https://api.tomorrow.io", cfg.Weather.BaseURL)
	require.Equal(t, 8, cfg.Search.MaxResults)
	require.Equal(t, 720, cfg.Git.MaxCommits)
	require.Equal(t, "data/runs.db", cfg.Ledger.DSN)
	require.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	envFile := writeTempConfig(t, ".env", "TAVILY_API_KEY=tvly-from-file\n")
	path := writeTempConfig(t, "config.json", `{"location": "Moscow"}`)

	t.Setenv("LLM_API_KEY", "llm-key")
	t.Setenv("TOMORROWIO_API_KEY", "weather-key")
	t.Setenv("GITHUB_USERNAME", "someone")
	t.Setenv("TAVILY_API_KEY", "")
	os.Unsetenv("TAVILY_API_KEY")

	cfg, err := config.Load(path, envFile)
	require.NoError(t, err)
	require.Equal(t, "llm-key", cfg.LLM.APIKey)
	require.Equal(t, "weather-key", cfg.Weather.APIKey)
	require.Equal(t, "someone", cfg.Git.Username)
	require.Equal(t, "tvly-from-file", cfg.Search.APIKey)
	os.Unsetenv("TAVILY_API_KEY")
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	path := writeTempConfig(t, "config.json", `{"location": "Moscow", "llm": {"api_key": "k"}}`)

	cfg, err := config.Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "Moscow", cfg.LocationName)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr string
	}{
		{"ok", func(cfg *config.Config) {}, ""},
		{"no location", func(cfg *config.Config) { cfg.Location = "" }, "location must be set"},
		{"absolute document", func(cfg *config.Config) { cfg.Document = "/tmp/README.md" }, "document must be relative"},
		{"escaping document", func(cfg *config.Config) { cfg.Document = "../README.md" }, "document must be relative"},
		{"run timeout", func(cfg *config.Config) { cfg.RunTimeout = -1 }, "run timeout must be ≥ 1"},
		{"timezone", func(cfg *config.Config) { cfg.Timezone = "Mars/Olympus" }, "invalid timezone"},
		{"weather provider", func(cfg *config.Config) { cfg.Weather.Provider = "openweather" }, "unknown weather provider"},
		{"llm key", func(cfg *config.Config) { cfg.LLM.APIKey = "" }, "llm api key must be set"},
		{"bad url", func(cfg *config.Config) { cfg.Cat.BaseURL = "not-a-url" }, "invalid cat URL"},
		{"push without git", func(cfg *config.Config) { cfg.Git.Push = true }, "git push requires git"},
		{"push bad remote", func(cfg *config.Config) {
			cfg.Git.Enabled = true
			cfg.Git.Push = true
			cfg.Git.Remote = "github.com/x"
		}, "invalid git remote"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
