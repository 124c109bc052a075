package localllm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"mealprep/internal/inventory"
	"mealprep/internal/platform/gemini"
	"mealprep/internal/recipe"
	"mealprep/internal/suggest"
)

// Client talks to a local OpenAI-compatible server (LM Studio, Ollama) as a
// drop-in replacement for the hosted model. It answers the same extraction
// prompts the Gemini client uses.
type Client struct {
	httpClient *http.Client
	apiURL     string
	model      string
}

// NewClient creates a client for a local LLM endpoint, e.g.
// http://localhost:1234/v1/chat/completions.
func NewClient(apiURL string) *Client {
	return &Client{
		httpClient: &http.Client{},
		apiURL:     apiURL,
		model:      "gemma-3-12b-it",
	}
}

type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string    `json:"role"`
	Content []content `json:"content"`
}

type content struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) generate(ctx context.Context, prompt string, imageData []byte, format string) (string, error) {
	parts := []content{{Type: "text", Text: prompt}}
	if imageData != nil {
		parts = append(parts, content{
			Type: "image_url",
			ImageURL: &imageURL{
				URL: fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(imageData)),
			},
		})
	}

	reqBody := request{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: parts}},
		Temperature: 0.3,
		MaxTokens:   4096,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}

	var llmResp response
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("no content found in response")
	}
	return llmResp.Choices[0].Message.Content, nil
}

func cleanJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "{"); start > 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}

// ExtractRecipeFromImage reads a recipe out of a photo.
func (c *Client) ExtractRecipeFromImage(ctx context.Context, imageData []byte, format string) (*recipe.Draft, []byte, error) {
	raw, err := c.generate(ctx, gemini.OCRPrompt, imageData, format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract recipe from image: %w", err)
	}

	var draft recipe.Draft
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &draft); err != nil {
		return nil, []byte(raw), fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, []byte(raw), gemini.ErrNoRecipeFound
	}
	return &draft, []byte(raw), nil
}

// ExtractRecipeFromText turns scraped web page text into a recipe draft.
func (c *Client) ExtractRecipeFromText(ctx context.Context, pageText string) (*recipe.Draft, []byte, error) {
	raw, err := c.generate(ctx, gemini.URLExtractPrompt+"\n\n"+pageText, nil, "")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract recipe from text: %w", err)
	}

	var draft recipe.Draft
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &draft); err != nil {
		return nil, []byte(raw), fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, []byte(raw), gemini.ErrNoRecipeFound
	}
	return &draft, []byte(raw), nil
}

// ScanStorageImage identifies groceries in a storage photo.
func (c *Client) ScanStorageImage(ctx context.Context, imageData []byte, format string) ([]inventory.ScannedItem, error) {
	raw, err := c.generate(ctx, gemini.StorageScanPrompt, imageData, format)
	if err != nil {
		return nil, fmt.Errorf("failed to scan storage image: %w", err)
	}

	var out struct {
		Items []inventory.ScannedItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	for i := range out.Items {
		if !inventory.ValidLocation(out.Items[i].SuggestedLocation) {
			out.Items[i].SuggestedLocation = inventory.LocationPantry
		}
	}
	return out.Items, nil
}

// SuggestMeals produces meal ideas from the household context block.
func (c *Client) SuggestMeals(ctx context.Context, contextBlock string) ([]suggest.Suggestion, error) {
	raw, err := c.generate(ctx, gemini.SuggestPrompt+"\n\n"+contextBlock, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}

	var out struct {
		Suggestions []suggest.Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return out.Suggestions, nil
}
