package main

import (
	"context"
	"fmt"
	"time"

	"readme_updater/internal/apperr"
	"readme_updater/internal/config"
	"readme_updater/internal/db"
	"readme_updater/internal/fetcher"
	"readme_updater/internal/generator"
	"readme_updater/internal/gitrepo"
	"readme_updater/internal/llm"
	"readme_updater/internal/logger"
	"readme_updater/internal/metrics"
	"readme_updater/internal/pipeline"
)

// application - собранный конвейер и ресурсы, которые нужно закрыть.
type application struct {
	pipeline *pipeline.Pipeline
	ledger   db.Ledger
}

func (a *application) Close() {
	if a.ledger != nil {
		if err := a.ledger.Close(); err != nil {
			logger.Log.Warnf("Failed to close ledger: %v", err)
		}
	}
}

// build собирает конвейер из конфигурации. full включает журнал запусков и метрики.
func build(ctx context.Context, cfg *config.Config, full bool) (*application, error) {
	runTimeout, httpTimeout := cfg.Timeouts()
	client := fetcher.NewHTTPClient(httpTimeout)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfig, err)
	}
	persona, err := generator.LoadPersona(cfg.PersonaFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfig, err)
	}

	completer := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, client)
	search := fetcher.NewSearchClient(cfg.Search.BaseURL, cfg.Search.APIKey, cfg.Search.MaxResults, client)
	src := pipeline.Sources{
		Weather: fetcher.NewWeatherClient(fetcher.WeatherOptions{
			Provider:     cfg.Weather.Provider,
			BaseURL:      cfg.Weather.BaseURL,
			APIKey:       cfg.Weather.APIKey,
			Location:     cfg.Location,
			LocationName: cfg.LocationName,
		}, client),
		Bing:           fetcher.NewBingClient(cfg.Bing.BaseURL, cfg.Bing.Country, client),
		Cat:            fetcher.NewCatClient(cfg.Cat.BaseURL, cfg.Cat.APIKey, client),
		Wonder:         generator.NewWonder(completer, search, client),
		Journal:        generator.NewJournal(completer, persona),
		Narrator:       generator.NewNarrator(completer),
		CommitMessages: generator.NewCommitMessages(completer),
	}

	app := &application{}
	var repo pipeline.Repository
	if cfg.Git.Enabled {
		r := gitrepo.New(gitrepo.Options{
			Dir:         cfg.RepoDir,
			Branch:      cfg.Git.Branch,
			Remote:      cfg.Git.Remote,
			Username:    cfg.Git.Username,
			Token:       cfg.Git.Token,
			AuthorName:  cfg.Git.AuthorName,
			AuthorEmail: cfg.Git.AuthorEmail,
			Push:        cfg.Git.Push,
			MaxCommits:  cfg.Git.MaxCommits,
		})
		if !r.IsRepo(ctx) {
			return nil, fmt.Errorf("%w: %s is not a git work tree", apperr.ErrConfig, cfg.RepoDir)
		}
		repo = r
	}

	var m *metrics.Metrics
	if full {
		ledger, err := db.Open(ctx, cfg.Ledger.DSN)
		if err != nil {
			logger.Component("ledger").Warnf("Run ledger unavailable, continuing without it: %v", err)
		} else {
			app.ledger = ledger
		}
		m = metrics.New()
	}

	app.pipeline = pipeline.New(pipeline.Options{
		RepoDir:      cfg.RepoDir,
		Document:     cfg.Document,
		Title:        cfg.Title,
		HistoryDepth: cfg.HistoryDepth,
		Timeout:      runTimeout,
		Location:     loc,
		MetricsFile:  cfg.Metrics.TextfilePath,
	}, src, repo, app.ledger, m)
	return app, nil
}
