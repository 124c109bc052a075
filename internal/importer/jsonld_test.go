package importer

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestDraftFromJSONLD(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@type": "Recipe",
		"name": "Spaghetti Carbonara",
		"description": "A Roman classic.",
		"prepTime": "PT10M",
		"cookTime": "PT1H15M",
		"recipeYield": "4 servings",
		"recipeCuisine": "Italian",
		"keywords": "pasta, dinner",
		"recipeIngredient": ["400g spaghetti", "200g guanciale", "4 eggs"],
		"recipeInstructions": [
			{"@type": "HowToStep", "text": "Boil the pasta."},
			{"@type": "HowToStep", "text": "Fry the guanciale."}
		]
	}
	</script>
	</head><body></body></html>`

	draft, raw := draftFromJSONLD(docFromHTML(t, html))
	require.NotNil(t, draft)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "Spaghetti Carbonara", draft.Title)
	assert.Equal(t, "A Roman classic.", *draft.Description)
	assert.Equal(t, 10, *draft.PrepTime)
	assert.Equal(t, 75, *draft.CookTime)
	assert.Equal(t, 4, draft.Servings)
	assert.Equal(t, "Italian", *draft.Cuisine)
	assert.Equal(t, []string{"pasta", "dinner"}, draft.Tags)
	require.Len(t, draft.Ingredients, 3)
	assert.Equal(t, "400g spaghetti", draft.Ingredients[0].OriginalText)
	assert.Equal(t, []string{"Boil the pasta.", "Fry the guanciale."}, draft.Steps)
}

func TestDraftFromJSONLDGraph(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "WebPage", "name": "Some food blog"},
			{
				"@type": ["Recipe", "NewsArticle"],
				"name": "Banana Bread",
				"recipeYield": 8,
				"recipeIngredient": ["3 bananas", "250g flour"],
				"recipeInstructions": ["Mash bananas.", "Bake."]
			}
		]
	}
	</script>
	</head><body></body></html>`

	draft, _ := draftFromJSONLD(docFromHTML(t, html))
	require.NotNil(t, draft)
	assert.Equal(t, "Banana Bread", draft.Title)
	assert.Equal(t, 8, draft.Servings)
	assert.Equal(t, []string{"Mash bananas.", "Bake."}, draft.Steps)
}

func TestDraftFromJSONLDIgnoresNonRecipes(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">
	{"@type": "NewsArticle", "name": "Ten best pans", "recipeIngredient": ["a pan"]}
	</script>
	</head><body></body></html>`

	draft, _ := draftFromJSONLD(docFromHTML(t, html))
	assert.Nil(t, draft)
}

func TestDraftFromJSONLDRequiresIngredientsAndSteps(t *testing.T) {
	html := `<html><head>
	<script type="application/ld+json">
	{"@type": "Recipe", "name": "Mystery", "recipeIngredient": ["something"]}
	</script>
	</head><body></body></html>`

	draft, _ := draftFromJSONLD(docFromHTML(t, html))
	assert.Nil(t, draft, "a recipe without instructions falls through to the model")
}

func TestParseInstructionsSections(t *testing.T) {
	raw := `[
		{"@type": "HowToSection", "name": "Dough", "itemListElement": [
			{"@type": "HowToStep", "text": "Mix flour and water."}
		]},
		{"@type": "HowToStep", "name": "Bake for 20 minutes."}
	]`
	steps := parseInstructions([]byte(raw))
	assert.Equal(t, []string{"Mix flour and water.", "Bake for 20 minutes."}, steps)
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT30M", 30},
		{"PT1H", 60},
		{"PT1H30M", 90},
		{"P1DT2H", 1560},
		{"", 0},
		{"not a duration", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseISODuration(tt.in), tt.in)
	}
}

func TestPageTextStripsNoiseAndTruncates(t *testing.T) {
	html := `<html><head><title>Best Stew</title>
	<script>alert("hi")</script><style>body{}</style></head>
	<body><nav>Home | About</nav>
	<p>Brown the beef.</p>
	<footer>Copyright</footer></body></html>`

	text := pageText(docFromHTML(t, html))
	assert.Contains(t, text, "Best Stew")
	assert.Contains(t, text, "Brown the beef.")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "Home | About")
	assert.NotContains(t, text, "Copyright")

	long := "<html><body><p>" + strings.Repeat("stew ", 5000) + "</p></body></html>"
	assert.LessOrEqual(t, len(pageText(docFromHTML(t, long))), maxPromptLen)
}

func TestValidateImage(t *testing.T) {
	_, err := validateImage([]byte{1, 2, 3}, "image/gif")
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = validateImage(make([]byte, maxImageBytes+1), "image/jpeg")
	assert.ErrorIs(t, err, ErrImageTooLarge)

	format, err := validateImage([]byte{1, 2, 3}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	format, err = validateImage([]byte{1, 2, 3}, "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "webp", format)
}
