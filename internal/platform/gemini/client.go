package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mealprep/internal/inventory"
	"mealprep/internal/recipe"
	"mealprep/internal/suggest"
)

// ErrNoRecipeFound is returned when the model could not find a recipe in the
// input.
var ErrNoRecipeFound = fmt.Errorf("no recipe found in input")

// Client talks to the Gemini API for recipe extraction, storage scanning and
// meal suggestions.
type Client struct {
	model *genai.GenerativeModel
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{model: client.GenerativeModel("gemini-2.0-flash")}, nil
}

func (c *Client) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return string(text), nil
}

// ExtractRecipeFromImage reads a recipe out of a photo of a cookbook page,
// recipe card or handwritten note.
func (c *Client) ExtractRecipeFromImage(ctx context.Context, imageData []byte, format string) (*recipe.Draft, []byte, error) {
	raw, err := c.generate(ctx,
		genai.ImageData(format, imageData),
		genai.Text(OCRPrompt),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract recipe from image: %w", err)
	}

	var draft recipe.Draft
	if err := decodeJSON(raw, &draft); err != nil {
		return nil, []byte(raw), err
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, []byte(raw), ErrNoRecipeFound
	}
	return &draft, []byte(raw), nil
}

// ExtractRecipeFromText turns scraped web page text into a recipe draft.
func (c *Client) ExtractRecipeFromText(ctx context.Context, pageText string) (*recipe.Draft, []byte, error) {
	raw, err := c.generate(ctx,
		genai.Text(URLExtractPrompt+"\n\n"+pageText),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract recipe from text: %w", err)
	}

	var draft recipe.Draft
	if err := decodeJSON(raw, &draft); err != nil {
		return nil, []byte(raw), err
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, []byte(raw), ErrNoRecipeFound
	}
	return &draft, []byte(raw), nil
}

// ScanStorageImage identifies groceries in a photo of a fridge, freezer or
// pantry.
func (c *Client) ScanStorageImage(ctx context.Context, imageData []byte, format string) ([]inventory.ScannedItem, error) {
	raw, err := c.generate(ctx,
		genai.ImageData(format, imageData),
		genai.Text(StorageScanPrompt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan storage image: %w", err)
	}

	var out struct {
		Items []inventory.ScannedItem `json:"items"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		return nil, err
	}

	for i := range out.Items {
		if !inventory.ValidLocation(out.Items[i].SuggestedLocation) {
			out.Items[i].SuggestedLocation = inventory.LocationPantry
		}
	}
	return out.Items, nil
}

// SuggestMeals produces meal ideas from the household's inventory and recipe
// context block.
func (c *Client) SuggestMeals(ctx context.Context, contextBlock string) ([]suggest.Suggestion, error) {
	raw, err := c.generate(ctx,
		genai.Text(SuggestPrompt+"\n\n"+contextBlock),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}

	var out struct {
		Suggestions []suggest.Suggestion `json:"suggestions"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}
