package fetcher

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

const ProviderSearch = "tavily"

// SearchRequest - параметры поискового запроса.
type SearchRequest struct {
	Query                    string `json:"query"`
	MaxResults               int    `json:"max_results"`
	Topic                    string `json:"topic"`
	SearchDepth              string `json:"search_depth"`
	TimeRange                string `json:"time_range,omitempty"`
	IncludeImages            bool   `json:"include_images"`
	IncludeImageDescriptions bool   `json:"include_image_descriptions"`
	IncludeAnswer            bool   `json:"include_answer"`
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type SearchImage struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

type SearchResponse struct {
	Query   string
	Answer  string
	Results []SearchResult
	Images  []SearchImage
}

type searchResponseDTO struct {
	Query   string            `json:"query"`
	Answer  string            `json:"answer"`
	Results []SearchResult    `json:"results"`
	Images  []json.RawMessage `json:"images"`
}

// SearchClient выполняет веб-поиск через Tavily.
type SearchClient struct {
	baseURL    string
	apiKey     string
	maxResults int
	client     *http.Client
}

func NewSearchClient(baseURL, apiKey string, maxResults int, client *http.Client) *SearchClient {
	return &SearchClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, maxResults: maxResults, client: client}
}

// ImageSearch возвращает запрос с картинками и кратким ответом за последний месяц.
func (c *SearchClient) ImageSearch(query string) SearchRequest {
	return SearchRequest{
		Query:                    query,
		MaxResults:               c.maxResults,
		Topic:                    "general",
		SearchDepth:              "basic",
		TimeRange:                "month",
		IncludeImages:            true,
		IncludeImageDescriptions: true,
		IncludeAnswer:            true,
	}
}

func (c *SearchClient) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, schemaError(ProviderSearch, "empty query")
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	var dto searchResponseDTO
	if err := postJSON(ctx, c.client, ProviderSearch, c.baseURL+"/search", header, req, &dto); err != nil {
		return nil, err
	}

	resp := &SearchResponse{Query: dto.Query, Answer: dto.Answer, Results: dto.Results}
	for _, raw := range dto.Images {
		var u string
		if err := json.Unmarshal(raw, &u); err == nil {
			resp.Images = append(resp.Images, SearchImage{URL: u})
			continue
		}
		var img SearchImage
		if err := json.Unmarshal(raw, &img); err != nil {
			return nil, schemaError(ProviderSearch, "invalid image entry: %v", err)
		}
		resp.Images = append(resp.Images, img)
	}
	return resp, nil
}

// FormatForLLM раскладывает результаты поиска в текст для промпта.
func (r *SearchResponse) FormatForLLM() string {
	if r == nil {
		return "No search results available."
	}
	var b strings.Builder
	b.WriteString("Search query: " + r.Query + "\n\n")
	if r.Answer != "" {
		b.WriteString("Summary: " + r.Answer + "\n\n")
	}
	if len(r.Results) > 0 {
		b.WriteString("Sources:\n")
		for i, res := range r.Results {
			b.WriteString(strconv.Itoa(i+1) + ". " + res.Title + "\n")
			b.WriteString("   URL: " + res.URL + "\n")
			b.WriteString("   " + strings.TrimSpace(res.Content) + "\n")
		}
		b.WriteString("\n")
	}
	if len(r.Images) > 0 {
		b.WriteString("Images:\n")
		for i, img := range r.Images {
			line := strconv.Itoa(i+1) + ". " + img.URL
			if img.Description != "" {
				line += " - " + img.Description
			}
			b.WriteString(line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
