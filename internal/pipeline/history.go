package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"readme_updater/internal/logger"
	"readme_updater/internal/render"
)

// history - контекст из прошлых версий документа.
type history struct {
	journals []string // тексты прошлых записей, от новых к старым
	places   []string // уже описанные чудеса природы
	subjects []string // темы последних коммитов
}

// loadHistory читает прошлые версии документа из git, а без git или истории - текущий файл.
// Недоступная история не мешает запуску: промпты просто получают меньше контекста.
func (p *Pipeline) loadHistory(ctx context.Context, log *logger.Entry) history {
	var (
		h        history
		versions []string
		err      error
	)
	if p.repo != nil {
		if versions, err = p.repo.FileHistory(ctx, p.opts.Document, p.opts.HistoryDepth); err != nil {
			log.Warnf("Failed to read document history: %v", err)
		}
		if h.subjects, err = p.repo.RecentSubjects(ctx, p.opts.HistoryDepth); err != nil {
			log.Warnf("Failed to read recent commits: %v", err)
		}
	}
	if len(versions) == 0 {
		if data, err := os.ReadFile(filepath.Join(p.opts.RepoDir, p.opts.Document)); err == nil {
			versions = []string{string(data)}
		}
	}
	h.journals, h.places = fromVersions(versions)
	log.WithField("versions", len(versions)).Debug("History loaded")
	return h
}

func fromVersions(versions []string) (journals, places []string) {
	seenJournal := make(map[string]bool)
	seenPlace := make(map[string]bool)
	for _, doc := range versions {
		if text := render.JournalText(render.ExtractSection(doc, render.HeaderJournal)); text != "" && !seenJournal[text] {
			seenJournal[text] = true
			journals = append(journals, text)
		}
		if place := render.WonderPlace(render.ExtractSection(doc, render.HeaderWonder)); place != "" && !seenPlace[place] {
			seenPlace[place] = true
			places = append(places, place)
		}
	}
	return journals, places
}
