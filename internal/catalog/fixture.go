// Package catalog provides the item catalogs the study flows draw from.
package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"cebuano/internal/domain"
)

//go:embed data/*.json
var dataFS embed.FS

type fixtureWord struct {
	Rank        int    `json:"rank"`
	Cebuano     string `json:"cebuano"`
	English     string `json:"english"`
	Explanation string `json:"explanation"`
}

type fixturePhrase struct {
	Cebuano string `json:"cebuano"`
	English string `json:"english"`
}

// Fixture is an immutable in-memory catalog
type Fixture struct {
	kind  domain.ItemKind
	items []domain.Item
	byID  map[string]int
}

// New loads the embedded catalog for kind
func New(kind domain.ItemKind) (*Fixture, error) {
	switch kind {
	case domain.KindFlashcard:
		return NewFlashcards()
	case domain.KindPhrase:
		return NewPhrases()
	}
	return nil, fmt.Errorf("no fixture catalog for kind %q", kind)
}

// NewFlashcards loads the embedded word list. Cards are ordered by rank and
// identified by it.
func NewFlashcards() (*Fixture, error) {
	raw, err := dataFS.ReadFile("data/flashcards.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read flashcards: %w", err)
	}

	var words []fixtureWord
	if err := json.Unmarshal(raw, &words); err != nil {
		return nil, fmt.Errorf("failed to parse flashcards: %w", err)
	}

	sort.SliceStable(words, func(i, j int) bool { return words[i].Rank < words[j].Rank })

	items := make([]domain.Item, 0, len(words))
	for _, w := range words {
		items = append(items, domain.Item{
			ID:          strconv.Itoa(w.Rank),
			Kind:        domain.KindFlashcard,
			Rank:        w.Rank,
			Cebuano:     w.Cebuano,
			English:     w.English,
			Explanation: w.Explanation,
			Active:      true,
		})
	}
	return FromItems(domain.KindFlashcard, items), nil
}

// NewPhrases loads the embedded phrasebook. A phrase's id and rank are its
// one-based position in the file.
func NewPhrases() (*Fixture, error) {
	raw, err := dataFS.ReadFile("data/phrases.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read phrases: %w", err)
	}

	var phrases []fixturePhrase
	if err := json.Unmarshal(raw, &phrases); err != nil {
		return nil, fmt.Errorf("failed to parse phrases: %w", err)
	}

	items := make([]domain.Item, 0, len(phrases))
	for i, p := range phrases {
		items = append(items, domain.Item{
			ID:      strconv.Itoa(i + 1),
			Kind:    domain.KindPhrase,
			Rank:    i + 1,
			Cebuano: p.Cebuano,
			English: p.English,
			Active:  true,
		})
	}
	return FromItems(domain.KindPhrase, items), nil
}

// FromItems builds a catalog over items, which must already be ordered by rank
func FromItems(kind domain.ItemKind, items []domain.Item) *Fixture {
	byID := make(map[string]int, len(items))
	for i, it := range items {
		byID[it.ID] = i
	}
	return &Fixture{kind: kind, items: items, byID: byID}
}

// Kind returns the catalog's item kind
func (f *Fixture) Kind() domain.ItemKind {
	return f.kind
}

// FindByID returns an item by id or nil
func (f *Fixture) FindByID(_ context.Context, id string) (*domain.Item, error) {
	i, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	it := f.items[i]
	return &it, nil
}

// ListAllActive returns active items by rank
func (f *Fixture) ListAllActive(_ context.Context) ([]domain.Item, error) {
	active := make([]domain.Item, 0, len(f.items))
	for _, it := range f.items {
		if it.Active {
			active = append(active, it)
		}
	}
	return active, nil
}

// Items returns every item, including inactive ones
func (f *Fixture) Items() []domain.Item {
	return append([]domain.Item(nil), f.items...)
}
