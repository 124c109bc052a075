package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONPlain(t *testing.T) {
	var out struct {
		Title string `json:"title"`
	}
	err := decodeJSON(`{"title": "Carbonara"}`, &out)
	require.NoError(t, err)
	assert.Equal(t, "Carbonara", out.Title)
}

func TestDecodeJSONFenced(t *testing.T) {
	var out struct {
		Title string `json:"title"`
	}
	raw := "```json\n{\"title\": \"Carbonara\"}\n```"
	err := decodeJSON(raw, &out)
	require.NoError(t, err)
	assert.Equal(t, "Carbonara", out.Title)
}

func TestDecodeJSONEmbedded(t *testing.T) {
	var out struct {
		Title string `json:"title"`
	}
	raw := "Here is the recipe you asked for:\n{\"title\": \"Carbonara\"}\nEnjoy!"
	err := decodeJSON(raw, &out)
	require.NoError(t, err)
	assert.Equal(t, "Carbonara", out.Title)
}

func TestDecodeJSONGarbage(t *testing.T) {
	var out struct{}
	err := decodeJSON("sorry, I cannot read this image", &out)
	assert.Error(t, err)
}

func TestDecodeJSONMalformedInsideBraces(t *testing.T) {
	var out struct{}
	err := decodeJSON("{not json at all}", &out)
	assert.Error(t, err)
}
