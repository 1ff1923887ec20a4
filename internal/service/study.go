package service

import (
	"context"
	"errors"
	"fmt"

	"cebuano/internal/domain"
	"cebuano/internal/repository"

	"go.uber.org/zap"
)

// ErrUnknownKind is returned for an item kind without a configured deck
var ErrUnknownKind = errors.New("unknown item kind")

// Deck bundles the collaborators serving one item kind
type Deck struct {
	Kind     domain.ItemKind
	Items    repository.ItemRepository
	Selector *Selector
	Recorder *ReviewRecorder
	Progress *ProgressService
}

// NewDeck wires a deck for kind over its review store and catalog
func NewDeck(
	kind domain.ItemKind,
	reviews repository.ReviewRepository,
	items repository.ItemRepository,
	clock Clock,
	logger *zap.Logger,
	observers ...ReviewObserver,
) *Deck {
	logger = logger.With(zap.String("kind", string(kind)))
	return &Deck{
		Kind:     kind,
		Items:    items,
		Selector: NewSelector(reviews, items, logger),
		Recorder: NewReviewRecorder(kind, reviews, clock, logger, observers...),
		Progress: NewProgressService(reviews, clock, logger),
	}
}

// SessionOptions overrides learner settings for one session request
type SessionOptions struct {
	Limit       int
	NewDailyCap int
}

// StudyService applies learner settings to the decks of every item kind
type StudyService struct {
	settings *SettingsService
	decks    map[domain.ItemKind]*Deck
	clock    Clock
	logger   *zap.Logger
}

// NewStudyService creates a new study service
func NewStudyService(settings *SettingsService, clock Clock, logger *zap.Logger, decks ...*Deck) *StudyService {
	byKind := make(map[domain.ItemKind]*Deck, len(decks))
	for _, d := range decks {
		byKind[d.Kind] = d
	}
	return &StudyService{
		settings: settings,
		decks:    byKind,
		clock:    clock,
		logger:   logger,
	}
}

func (s *StudyService) deck(kind domain.ItemKind) (*Deck, error) {
	d, ok := s.decks[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return d, nil
}

// Session selects the learner's next study session for kind
func (s *StudyService) Session(ctx context.Context, kind domain.ItemKind, userID string, opts SessionOptions) ([]StudyItem, error) {
	d, err := s.deck(kind)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	in := SelectInput{
		UserID:      userID,
		Limit:       settings.SessionLimit,
		NewDailyCap: settings.NewDailyCap,
		Now:         s.clock(),
	}
	switch kind {
	case domain.KindFlashcard:
		in.StartAfterRank = settings.LastLearnedRank
	case domain.KindPhrase:
		in.Limit = domain.DefaultPhraseNewDailyCap
		in.NewDailyCap = domain.DefaultPhraseNewDailyCap
	}
	if opts.Limit > 0 {
		in.Limit = opts.Limit
	}
	if opts.NewDailyCap > 0 {
		in.NewDailyCap = opts.NewDailyCap
	}

	items, err := d.Selector.Select(ctx, in)
	if err != nil {
		s.logger.Error("Failed to select session",
			zap.String("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil, err
	}
	return items, nil
}

// Review records a rating for an item of kind, enforcing the learner's daily cap
func (s *StudyService) Review(ctx context.Context, kind domain.ItemKind, userID, itemID string, rating domain.Rating) (*domain.ReviewState, error) {
	d, err := s.deck(kind)
	if err != nil {
		return nil, err
	}
	if _, err := rating.Quality(); err != nil {
		return nil, err
	}

	item, err := d.Items.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrItemNotFound, kind, itemID)
	}

	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return d.Recorder.Record(ctx, userID, itemID, rating, settings.DailyReviewCap)
}

// Progress returns the learner's progress for kind
func (s *StudyService) Progress(ctx context.Context, kind domain.ItemKind, userID string) (domain.Progress, error) {
	d, err := s.deck(kind)
	if err != nil {
		return domain.Progress{}, err
	}
	return d.Progress.GetProgress(ctx, userID)
}

// Item returns an item of kind by id
func (s *StudyService) Item(ctx context.Context, kind domain.ItemKind, itemID string) (*domain.Item, error) {
	d, err := s.deck(kind)
	if err != nil {
		return nil, err
	}
	item, err := d.Items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrItemNotFound, kind, itemID)
	}
	return item, nil
}

// Settings returns the settings service
func (s *StudyService) Settings() *SettingsService {
	return s.settings
}
