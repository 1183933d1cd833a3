package fetcher

import (
	"context"
	"net/http"
	"strings"

	"readme_updater/internal/apperr"
	"readme_updater/internal/models"
)

const ProviderCat = "thecatapi"

type catImage struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Breeds []struct {
		Name        string `json:"name"`
		Temperament string `json:"temperament"`
		Origin      string `json:"origin"`
	} `json:"breeds"`
}

// CatClient получает случайную картинку кота.
type CatClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewCatClient(baseURL, apiKey string, client *http.Client) *CatClient {
	return &CatClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

func (c *CatClient) Fetch(ctx context.Context) (*models.ImageOfDay, error) {
	header := http.Header{}
	if c.apiKey != "" {
		header.Set("x-api-key", c.apiKey)
	}

	var images []catImage
	if err := getJSON(ctx, c.client, ProviderCat, c.baseURL+"/v1/images/search", header, &images); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, &apperr.ProviderError{Provider: ProviderCat, Kind: apperr.KindEmpty, Err: apperr.ErrEmptyContent}
	}
	cat := images[0]
	if cat.URL == "" {
		return nil, schemaError(ProviderCat, "image %q without url", cat.ID)
	}

	img := &models.ImageOfDay{URL: cat.URL, Attribution: "via thecatapi.com"}
	if len(cat.Breeds) > 0 {
		b := cat.Breeds[0]
		img.Title = b.Name
		var parts []string
		for _, p := range []string{b.Origin, b.Temperament} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		img.Caption = strings.Join(parts, " · ")
	}
	return img, nil
}
