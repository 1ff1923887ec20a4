package domain

import "fmt"

// ItemKind distinguishes the catalogs that share the scheduling shape
type ItemKind string

const (
	KindFlashcard ItemKind = "flashcard"
	KindPhrase    ItemKind = "phrase"
)

// ParseItemKind accepts both singular and plural spellings ("phrase", "phrases")
func ParseItemKind(s string) (ItemKind, error) {
	switch s {
	case "flashcard", "flashcards":
		return KindFlashcard, nil
	case "phrase", "phrases":
		return KindPhrase, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// Item is a studyable catalog entry (word flashcard or phrase)
type Item struct {
	ID          string
	Kind        ItemKind
	Rank        int
	Cebuano     string
	English     string
	Explanation string
	Active      bool
}
