package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mealprep/internal/recipe"
)

// Extractor is the model backend used when a page carries no structured
// recipe data.
type Extractor interface {
	ExtractRecipeFromImage(ctx context.Context, imageData []byte, format string) (*recipe.Draft, []byte, error)
	ExtractRecipeFromText(ctx context.Context, pageText string) (*recipe.Draft, []byte, error)
}

const (
	userAgent    = "MealPrepBot/1.0 (+recipe import)"
	maxBodyBytes = 5 << 20
	maxPromptLen = 12000
)

// Importer turns recipe URLs and photos into recipe drafts.
type Importer struct {
	httpClient *http.Client
	extractor  Extractor
}

// New creates an Importer backed by the given extractor.
func New(extractor Extractor) *Importer {
	return &Importer{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		extractor:  extractor,
	}
}

// FromURL fetches a recipe page and extracts a draft. Pages carrying a
// complete schema.org Recipe in JSON-LD are parsed directly; everything else
// is cleaned up and handed to the model.
func (imp *Importer) FromURL(ctx context.Context, url string) (*recipe.Draft, []byte, error) {
	doc, err := imp.fetch(ctx, url)
	if err != nil {
		return nil, nil, err
	}

	if draft, raw := draftFromJSONLD(doc); draft != nil {
		return draft, raw, nil
	}

	text := pageText(doc)
	if strings.TrimSpace(text) == "" {
		return nil, nil, fmt.Errorf("page contains no readable text")
	}

	draft, raw, err := imp.extractor.ExtractRecipeFromText(ctx, text)
	if err != nil {
		return nil, raw, err
	}
	return draft, raw, nil
}

// FromImage validates and downscales a recipe photo, then runs OCR
// extraction on it.
func (imp *Importer) FromImage(ctx context.Context, data []byte, contentType string) (*recipe.Draft, []byte, error) {
	format, err := validateImage(data, contentType)
	if err != nil {
		return nil, nil, err
	}

	data, format = downscale(data, format)
	return imp.extractor.ExtractRecipeFromImage(ctx, data, format)
}

func (imp *Importer) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid import URL: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := imp.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// pageText strips navigation and other noise and returns the page text,
// truncated to keep the model prompt bounded.
func pageText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside, iframe, form, noscript").Each(
		func(i int, s *goquery.Selection) {
			s.Remove()
		})

	title := strings.TrimSpace(doc.Find("title").First().Text())
	body := strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	text := body
	if title != "" {
		text = title + "\n" + body
	}
	if len(text) > maxPromptLen {
		text = text[:maxPromptLen]
	}
	return text
}
