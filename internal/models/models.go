package models

import "strings"

// Model identifies a code-generation model accepted by the translation endpoint.
type Model string

const (
	GPT35Turbo Model = "gpt-3.5-turbo"
	GPT4       Model = "gpt-4"

	Default = GPT35Turbo
)

type Info struct {
	ID    Model
	Label string
	// MaxInputChars is the largest source text, in characters, the model accepts.
	MaxInputChars int
}

var Catalog = []Info{
	{
		ID:            GPT35Turbo,
		Label:         "GPT-3.5 Turbo",
		MaxInputChars: 6000,
	},
	{
		ID:            GPT4,
		Label:         "GPT-4",
		MaxInputChars: 12000,
	},
}

func IDs() []Model {
	ids := make([]Model, 0, len(Catalog))
	for _, m := range Catalog {
		ids = append(ids, m.ID)
	}
	return ids
}

// Lookup returns the catalog entry for id. Unknown ids fall back to the
// default model's limits and report false.
func Lookup(id Model) (Info, bool) {
	for _, m := range Catalog {
		if m.ID == id {
			return m, true
		}
	}
	fallback := Catalog[0]
	fallback.ID = id
	return fallback, false
}

// Parse accepts a model id case-insensitively.
func Parse(s string) (Model, bool) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Catalog {
		if string(m.ID) == needle {
			return m.ID, true
		}
	}
	return "", false
}

// Next cycles through the catalog, used by selectors that toggle the model.
func Next(id Model) Model {
	for i, m := range Catalog {
		if m.ID == id {
			return Catalog[(i+1)%len(Catalog)].ID
		}
	}
	return Catalog[0].ID
}
