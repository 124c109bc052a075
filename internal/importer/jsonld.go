package importer

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mealprep/internal/recipe"
)

// ldRecipe mirrors the schema.org Recipe fields we care about. Values vary
// wildly across sites, so most fields decode through json.RawMessage.
type ldRecipe struct {
	Type               json.RawMessage `json:"@type"`
	Graph              []ldRecipe      `json:"@graph"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	PrepTime           string          `json:"prepTime"`
	CookTime           string          `json:"cookTime"`
	RecipeYield        json.RawMessage `json:"recipeYield"`
	RecipeCuisine      json.RawMessage `json:"recipeCuisine"`
	Keywords           json.RawMessage `json:"keywords"`
	RecipeIngredient   []string        `json:"recipeIngredient"`
	RecipeInstructions json.RawMessage `json:"recipeInstructions"`
}

// draftFromJSONLD scans the page's ld+json scripts for a schema.org Recipe,
// including recipes nested in an @graph, and converts the first complete one
// found. Returns nil when the page has no usable structured recipe.
func draftFromJSONLD(doc *goquery.Document) (*recipe.Draft, []byte) {
	var draft *recipe.Draft
	var raw []byte

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := s.Text()
		for _, candidate := range parseLDNodes(text) {
			if d := toDraft(candidate); d != nil {
				draft = d
				raw = []byte(text)
				return false
			}
		}
		return true
	})
	return draft, raw
}

// parseLDNodes flattens a ld+json payload (object, array, or @graph wrapper)
// into candidate recipe nodes.
func parseLDNodes(text string) []ldRecipe {
	var nodes []ldRecipe

	var one ldRecipe
	if err := json.Unmarshal([]byte(text), &one); err == nil {
		nodes = append(nodes, one)
		nodes = append(nodes, one.Graph...)
	}

	var many []ldRecipe
	if err := json.Unmarshal([]byte(text), &many); err == nil {
		for _, n := range many {
			nodes = append(nodes, n)
			nodes = append(nodes, n.Graph...)
		}
	}
	return nodes
}

func isRecipeType(raw json.RawMessage) bool {
	var single string
	if json.Unmarshal(raw, &single) == nil {
		return single == "Recipe"
	}
	var multi []string
	if json.Unmarshal(raw, &multi) == nil {
		for _, t := range multi {
			if t == "Recipe" {
				return true
			}
		}
	}
	return false
}

func toDraft(node ldRecipe) *recipe.Draft {
	if !isRecipeType(node.Type) || node.Name == "" || len(node.RecipeIngredient) == 0 {
		return nil
	}

	d := &recipe.Draft{
		Title:    node.Name,
		Servings: parseYield(node.RecipeYield),
		Cuisine:  firstString(node.RecipeCuisine),
		Tags:     stringList(node.Keywords),
		Steps:    parseInstructions(node.RecipeInstructions),
	}
	if node.Description != "" {
		d.Description = &node.Description
	}
	if m := parseISODuration(node.PrepTime); m > 0 {
		d.PrepTime = &m
	}
	if m := parseISODuration(node.CookTime); m > 0 {
		d.CookTime = &m
	}
	for _, line := range node.RecipeIngredient {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		d.Ingredients = append(d.Ingredients, recipe.DraftIngredient{
			Name:         line,
			OriginalText: line,
		})
	}
	if len(d.Ingredients) == 0 || len(d.Steps) == 0 {
		return nil
	}
	return d
}

// parseInstructions handles the three shapes sites use: plain strings,
// HowToStep objects, and HowToSection objects wrapping steps.
func parseInstructions(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var plain string
	if json.Unmarshal(raw, &plain) == nil {
		plain = strings.TrimSpace(plain)
		if plain == "" {
			return nil
		}
		return []string{plain}
	}

	type step struct {
		Type            string          `json:"@type"`
		Text            string          `json:"text"`
		Name            string          `json:"name"`
		ItemListElement json.RawMessage `json:"itemListElement"`
	}
	var steps []json.RawMessage
	if json.Unmarshal(raw, &steps) != nil {
		return nil
	}

	var out []string
	for _, s := range steps {
		var text string
		if json.Unmarshal(s, &text) == nil {
			if text = strings.TrimSpace(text); text != "" {
				out = append(out, text)
			}
			continue
		}
		var obj step
		if json.Unmarshal(s, &obj) != nil {
			continue
		}
		if obj.Type == "HowToSection" {
			out = append(out, parseInstructions(obj.ItemListElement)...)
			continue
		}
		if t := strings.TrimSpace(obj.Text); t != "" {
			out = append(out, t)
		} else if n := strings.TrimSpace(obj.Name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func parseYield(raw json.RawMessage) int {
	var n int
	if json.Unmarshal(raw, &n) == nil && n > 0 {
		return n
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		var list []string
		if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
			s = list[0]
		}
	}
	if m := regexp.MustCompile(`\d+`).FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			return n
		}
	}
	return 4
}

func firstString(raw json.RawMessage) *string {
	list := stringList(raw)
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

// stringList accepts a string, a comma-joined string, or an array of strings.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	var s string
	if json.Unmarshal(raw, &s) == nil {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		for _, part := range list {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?`)

// parseISODuration converts schema.org durations like PT1H30M to minutes.
func parseISODuration(s string) int {
	m := isoDuration.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	return days*24*60 + hours*60 + minutes
}
