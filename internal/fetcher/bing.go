package fetcher

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"readme_updater/internal/apperr"
	"readme_updater/internal/logger"
	"readme_updater/internal/models"
)

const ProviderBing = "bing"

// NoDescription подставляется, если описание со страницы получить не удалось.
const NoDescription = "(description not available)"

type peapixImage struct {
	Title     string `json:"title"`
	Copyright string `json:"copyright"`
	FullURL   string `json:"fullUrl"`
	PageURL   string `json:"pageUrl"`
	Date      string `json:"date"`
}

// BingClient получает картинку дня Bing через зеркало peapix.
type BingClient struct {
	baseURL string
	country string
	client  *http.Client
}

func NewBingClient(baseURL, country string, client *http.Client) *BingClient {
	return &BingClient{baseURL: strings.TrimRight(baseURL, "/"), country: country, client: client}
}

// Fetch загружает последнюю картинку дня и описание с ее страницы.
// Ошибка разбора страницы не делает картинку недоступной.
func (c *BingClient) Fetch(ctx context.Context) (*models.ImageOfDay, error) {
	q := url.Values{}
	q.Set("country", c.country)
	q.Set("n", "1")

	var feed []peapixImage
	if err := getJSON(ctx, c.client, ProviderBing, c.baseURL+"/bing/feed?"+q.Encode(), nil, &feed); err != nil {
		return nil, err
	}
	if len(feed) == 0 {
		return nil, &apperr.ProviderError{Provider: ProviderBing, Kind: apperr.KindEmpty, Err: apperr.ErrEmptyContent}
	}
	item := feed[0]
	if item.FullURL == "" || item.Title == "" {
		return nil, schemaError(ProviderBing, "feed item without title or url")
	}

	img := &models.ImageOfDay{
		Title:       strings.TrimSpace(item.Title),
		URL:         item.FullURL,
		Attribution: strings.TrimSpace(item.Copyright),
		PageURL:     item.PageURL,
		Date:        item.Date,
		Caption:     NoDescription,
	}
	if item.PageURL == "" {
		return img, nil
	}

	date, desc, err := c.scrapePage(ctx, item.PageURL)
	if err != nil {
		logger.Component("fetcher").WithField("url", item.PageURL).Warnf("Failed to scrape bing page: %v", err)
		return img, nil
	}
	if date != "" {
		img.Date = date
	}
	if desc != "" {
		img.Caption = desc
	}
	return img, nil
}

func (c *BingClient) scrapePage(ctx context.Context, pageURL string) (date, desc string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", apperr.NewProviderError(ProviderBing, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(ProviderBing, resp); err != nil {
		return "", "", err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", schemaError(ProviderBing, "parse page: %v", err)
	}
	date, desc = ParseBingPage(doc)
	return date, desc, nil
}

// ParseBingPage извлекает дату и описание со страницы картинки.
func ParseBingPage(doc *goquery.Document) (date, desc string) {
	if t := doc.Find("time").First(); t.Length() > 0 {
		date = strings.TrimSpace(t.Text())
		if date == "" {
			date = strings.TrimSpace(t.AttrOr("datetime", ""))
		}
	}

	var paragraphs []string
	doc.Find("div.position-relative p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) > 10 && !strings.HasPrefix(text, "©") {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 50 && !strings.HasPrefix(text, "©") {
				paragraphs = append(paragraphs, text)
			}
		})
	}
	return date, strings.Join(paragraphs, "\n\n")
}
