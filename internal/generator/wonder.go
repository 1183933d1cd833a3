package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"readme_updater/internal/apperr"
	"readme_updater/internal/fetcher"
	"readme_updater/internal/llm"
	"readme_updater/internal/logger"
	"readme_updater/internal/models"
)

// ProviderWonder - имя источника раздела о чуде природы.
const ProviderWonder = "wonder"

const maxWonderImages = 5

const querySystemPrompt = `You suggest one real natural wonder (a mountain, waterfall, desert, cave, forest, reef or rock formation) that is not in the list of places already used.

Reply with a short web search query for it: 3-5 words, the common name of the place and its country or region. Nothing else.

Good: "Victoria Falls Zambia", "Antelope Canyon Arizona".
Too long: "Victoria Falls Zambia Zimbabwe waterfall mist rainbow photography".`

const wonderSystemPrompt = `You are a travel writer. Using the search results you are given, describe the natural wonder they are about.

Reply with a JSON object and nothing else:
{"place": "<name, country>", "message": "<description>", "image_url": ["<url>", ...]}

The description:
- 120-200 words, plain text, no headings;
- open with a vivid scene, then where it is, how it formed and what makes it unusual;
- mention the best time to visit;
- use concrete facts from the results, your own knowledge only where you are sure.

Images:
- list 1-5 URLs taken only from the "Images" part of the search results, best first;
- prefer wide, clear landscape photos; skip watermarked stock previews, alamy and wikimedia;
- never invent a URL; return [] when nothing fits.`

// Searcher выполняет веб-поиск.
type Searcher interface {
	ImageSearch(query string) fetcher.SearchRequest
	Search(ctx context.Context, req fetcher.SearchRequest) (*fetcher.SearchResponse, error)
}

type wonderReply struct {
	Place    string   `json:"place"`
	Message  string   `json:"message"`
	ImageURL []string `json:"image_url"`
}

// Wonder подбирает новое чудо природы: модель предлагает запрос, поиск дает факты и картинки,
// модель пишет описание.
type Wonder struct {
	llm    Completer
	search Searcher
	client *http.Client
	log    *logger.Entry
}

func NewWonder(c Completer, s Searcher, client *http.Client) *Wonder {
	return &Wonder{llm: c, search: s, client: client, log: logger.Component("wonder")}
}

// Discover возвращает описание места, которого нет в used.
// Ошибки возвращаются как *apperr.ProviderError: раздел в этом случае деградирует.
func (w *Wonder) Discover(ctx context.Context, used []string) (*models.ImageOfDay, error) {
	query, err := w.llm.Complete(ctx, llm.Request{
		System:      querySystemPrompt,
		User:        "Places already used:\n" + bulletList(used),
		Temperature: 1.0,
	})
	if err != nil {
		return nil, wrapProvider(err)
	}
	query = strings.Trim(strings.TrimSpace(strings.SplitN(query, "\n", 2)[0]), `"'`)
	w.log.WithField("query", query).Info("Searching for natural wonder")

	results, err := w.search.Search(ctx, w.search.ImageSearch(query))
	if err != nil {
		// Без результатов поиска модель еще может написать описание по памяти.
		w.log.Warnf("Search failed, continuing without results: %v", err)
		results = nil
	}

	raw, err := w.llm.Complete(ctx, llm.Request{
		System:      wonderSystemPrompt,
		User:        results.FormatForLLM(),
		Temperature: 0.7,
	})
	if err != nil {
		return nil, wrapProvider(err)
	}
	var reply wonderReply
	if err := llm.DecodeJSON(raw, &reply); err != nil {
		return nil, err
	}

	place := cleanText(reply.Place)
	message := cleanText(reply.Message)
	if place == "" || message == "" {
		return nil, &apperr.ProviderError{Provider: ProviderWonder, Kind: apperr.KindSchema, Err: fmt.Errorf("reply without place or message")}
	}
	if len(reply.ImageURL) > maxWonderImages {
		reply.ImageURL = reply.ImageURL[:maxWonderImages]
	}

	img := &models.ImageOfDay{
		Title:   place,
		Caption: message,
		URL:     fetcher.FirstImage(ctx, w.client, reply.ImageURL),
	}
	if img.URL == "" {
		w.log.WithField("place", place).Warn("No reachable image for natural wonder")
	}
	return img, nil
}

func wrapProvider(err error) error {
	var perr *apperr.ProviderError
	if errors.As(err, &perr) {
		return err
	}
	return &apperr.ProviderError{Provider: ProviderWonder, Kind: apperr.KindNetwork, Err: err}
}
