// Package pipeline выполняет один линейный запуск: сбор данных, генерация текста,
// отрисовка документа, атомарная запись и коммит.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"readme_updater/internal/apperr"
	"readme_updater/internal/db"
	"readme_updater/internal/fetcher"
	"readme_updater/internal/generator"
	"readme_updater/internal/logger"
	"readme_updater/internal/metrics"
	"readme_updater/internal/models"
	"readme_updater/internal/render"
	"readme_updater/internal/timeprogress"
	"readme_updater/internal/writer"
)

// Имена разделов документа (они же имена задач сбора).
const (
	SectionWeather = "weather"
	SectionBing    = "bing"
	SectionWonder  = "wonder"
	SectionCat     = "cat"
	SectionJournal = "journal"
)

// Sections возвращает разделы в порядке следования в документе.
func Sections() []string {
	return []string{SectionWeather, SectionBing, SectionWonder, SectionCat, SectionJournal}
}

type WeatherSource interface {
	Fetch(ctx context.Context) (*models.WeatherSnapshot, error)
}

type ImageSource interface {
	Fetch(ctx context.Context) (*models.ImageOfDay, error)
}

type WonderSource interface {
	Discover(ctx context.Context, used []string) (*models.ImageOfDay, error)
}

type JournalSource interface {
	Generate(ctx context.Context, date time.Time, previous []string) (*models.JournalEntry, error)
}

type Narrator interface {
	Narrate(ctx context.Context, snap *models.WeatherSnapshot, now time.Time) (string, error)
}

type CommitMessageSource interface {
	Generate(ctx context.Context, weather *models.WeatherSnapshot, recent []string, now time.Time) string
}

// Repository - рабочая копия git, в которой лежит документ.
type Repository interface {
	FileHistory(ctx context.Context, path string, n int) ([]string, error)
	RecentSubjects(ctx context.Context, n int) ([]string, error)
	Commit(ctx context.Context, message string, paths ...string) (string, error)
}

// Sources - источники данных разделов. Незаданный источник дает заглушку.
type Sources struct {
	Weather        WeatherSource
	Bing           ImageSource
	Cat            ImageSource
	Wonder         WonderSource
	Journal        JournalSource
	Narrator       Narrator
	CommitMessages CommitMessageSource
}

// Options - параметры запуска.
type Options struct {
	RepoDir      string
	Document     string // путь относительно RepoDir
	Title        string
	HistoryDepth int
	Timeout      time.Duration
	Location     *time.Location
	Now          func() time.Time
	MetricsFile  string
}

// Result - итог запуска.
type Result struct {
	RunID         string
	Status        string
	Degraded      []string
	Document      string
	CommitMessage string
	CommitHash    string
}

// Pipeline связывает источники, хранилище документа, журнал запусков и метрики.
type Pipeline struct {
	opts    Options
	src     Sources
	repo    Repository
	ledger  db.Ledger
	metrics *metrics.Metrics
}

// New создает конвейер. repo, ledger и m могут быть nil: тогда коммит, журнал и метрики отключены.
func New(opts Options, src Sources, repo Repository, ledger db.Ledger, m *metrics.Metrics) *Pipeline {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Title == "" {
		opts.Title = "memo"
	}
	return &Pipeline{opts: opts, src: src, repo: repo, ledger: ledger, metrics: m}
}

// Run выполняет полный запуск: документ записывается и коммитится,
// итог попадает в журнал запусков и метрики.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := p.opts.Now()
	res := &Result{RunID: uuid.NewString()}
	log := logger.Component("pipeline").WithField("run_id", res.RunID)
	log.Info("Run started")

	err := p.execute(ctx, log, res, true)
	finished := p.opts.Now()

	if err != nil {
		res.Status = db.StatusFailed
		log.WithField("exit_code", apperr.ExitCode(err)).Errorf("Run failed: %v", err)
	} else {
		log.WithFields(map[string]any{
			"status":   res.Status,
			"degraded": res.Degraded,
			"commit":   res.CommitHash,
			"elapsed":  finished.Sub(started).String(),
		}).Info("Run finished")
	}
	p.record(ctx, log, res, started, finished, err)
	return res, err
}

// Render собирает документ без записи на диск, коммита и журнала.
func (p *Pipeline) Render(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := logger.Component("pipeline").WithField("run_id", res.RunID)
	if err := p.execute(ctx, log, res, false); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) execute(ctx context.Context, log *logger.Entry, res *Result, persist bool) error {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	hist := p.loadHistory(ctx, log)
	now := p.opts.Now().In(p.opts.Location)

	in := render.Input{Title: p.opts.Title, GeneratedAt: now}
	tasks, skipped := p.tasks(log, &in, hist, now)

	failures, err := fetcher.Collect(ctx, log, tasks)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("run aborted: %w", ctxErr)
	}
	if err != nil {
		return err
	}

	res.Degraded = degradedSections(skipped, failures)
	res.Status = db.StatusOK
	if len(res.Degraded) > 0 {
		res.Status = db.StatusDegraded
	}
	for _, f := range failures {
		p.countFailure(f)
	}

	doc, err := render.Render(in)
	if err != nil {
		return &apperr.GenerationError{Stage: "render", Err: err}
	}
	res.Document = doc
	if !persist {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("run aborted before write: %w", ctxErr)
	}

	// Таймаут после записи оставляет рабочую копию обновленной, но без коммита.
	docPath := filepath.Join(p.opts.RepoDir, p.opts.Document)
	progress := timeprogress.Calculate(now)
	lightRel := filepath.Join(filepath.Dir(p.opts.Document), timeprogress.LightFile)
	darkRel := filepath.Join(filepath.Dir(p.opts.Document), timeprogress.DarkFile)

	if err := writer.WriteAll([]writer.File{
		{Path: docPath, Data: []byte(doc)},
		{Path: filepath.Join(p.opts.RepoDir, lightRel), Data: []byte(timeprogress.RenderSVG(progress, timeprogress.TextLight))},
		{Path: filepath.Join(p.opts.RepoDir, darkRel), Data: []byte(timeprogress.RenderSVG(progress, timeprogress.TextDark))},
	}); err != nil {
		return err
	}
	log.WithField("path", docPath).Info("Document written")

	if p.repo == nil {
		return nil
	}
	msg := p.commitMessage(ctx, in.Weather, hist.subjects, now)
	res.CommitMessage = generator.FormatCommitMessage(msg, now)
	hash, err := p.repo.Commit(ctx, res.CommitMessage, p.opts.Document, lightRel, darkRel)
	res.CommitHash = hash
	return err
}

// tasks строит задачи сбора, которые заполняют in. skipped - разделы без источника.
func (p *Pipeline) tasks(log *logger.Entry, in *render.Input, hist history, now time.Time) (tasks []fetcher.Task, skipped []string) {
	if src := p.src.Weather; src != nil {
		tasks = append(tasks, fetcher.Task{Name: SectionWeather, Run: func(ctx context.Context) error {
			snap, err := src.Fetch(ctx)
			if err != nil {
				return err
			}
			if p.src.Narrator != nil {
				summary, err := p.src.Narrator.Narrate(ctx, snap, now)
				if err != nil {
					log.Warnf("Weather narrative unavailable: %v", err)
				}
				snap.Summary = summary
			}
			in.Weather = snap
			return nil
		}})
	} else {
		skipped = append(skipped, SectionWeather)
	}

	if src := p.src.Bing; src != nil {
		tasks = append(tasks, fetcher.Task{Name: SectionBing, Run: func(ctx context.Context) error {
			img, err := src.Fetch(ctx)
			in.Bing = img
			return err
		}})
	} else {
		skipped = append(skipped, SectionBing)
	}

	if src := p.src.Wonder; src != nil {
		tasks = append(tasks, fetcher.Task{Name: SectionWonder, Run: func(ctx context.Context) error {
			img, err := src.Discover(ctx, hist.places)
			in.Wonder = img
			return err
		}})
	} else {
		skipped = append(skipped, SectionWonder)
	}

	if src := p.src.Cat; src != nil {
		tasks = append(tasks, fetcher.Task{Name: SectionCat, Run: func(ctx context.Context) error {
			img, err := src.Fetch(ctx)
			in.Cat = img
			return err
		}})
	} else {
		skipped = append(skipped, SectionCat)
	}

	if src := p.src.Journal; src != nil {
		date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		tasks = append(tasks, fetcher.Task{Name: SectionJournal, Fatal: true, Run: func(ctx context.Context) error {
			entry, err := src.Generate(ctx, date, hist.journals)
			in.Journal = entry
			return err
		}})
	} else {
		skipped = append(skipped, SectionJournal)
	}
	return tasks, skipped
}

func (p *Pipeline) commitMessage(ctx context.Context, weather *models.WeatherSnapshot, recent []string, now time.Time) string {
	if p.src.CommitMessages == nil {
		return generator.FallbackMessage(recent, now)
	}
	return p.src.CommitMessages.Generate(ctx, weather, recent, now)
}

func (p *Pipeline) countFailure(f fetcher.Failure) {
	if p.metrics == nil {
		return
	}
	var perr *apperr.ProviderError
	if errors.As(f.Err, &perr) {
		p.metrics.RecordProviderFailure(perr.Provider, perr.Kind)
		return
	}
	p.metrics.RecordProviderFailure(f.Name, "unknown")
}

// record пишет итог запуска в журнал и метрики. Ошибки здесь только логируются.
func (p *Pipeline) record(ctx context.Context, log *logger.Entry, res *Result, started, finished time.Time, runErr error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if p.ledger != nil {
		run := db.Run{
			ID:            res.RunID,
			StartedAt:     started,
			FinishedAt:    finished,
			Status:        res.Status,
			Degraded:      res.Degraded,
			CommitMessage: res.CommitMessage,
			CommitHash:    res.CommitHash,
		}
		if runErr != nil {
			run.Error = runErr.Error()
		}
		if err := p.ledger.RecordRun(ctx, run); err != nil {
			log.Warnf("Failed to record run: %v", err)
		}
	}

	if p.metrics != nil {
		p.metrics.RecordRun(started, finished, runErr == nil, Sections(), res.Degraded)
		if err := p.metrics.WriteTextfile(p.opts.MetricsFile); err != nil {
			log.Warnf("Failed to write metrics: %v", err)
		}
	}
}

func degradedSections(skipped []string, failures []fetcher.Failure) []string {
	failed := make(map[string]bool, len(skipped)+len(failures))
	for _, s := range skipped {
		failed[s] = true
	}
	for _, f := range failures {
		failed[f.Name] = true
	}
	var out []string
	for _, s := range Sections() {
		if failed[s] {
			out = append(out, s)
		}
	}
	return out
}
