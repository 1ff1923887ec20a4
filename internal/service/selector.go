package service

import (
	"context"
	"fmt"
	"time"

	"cebuano/internal/domain"
	"cebuano/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// resolveConcurrency bounds parallel catalog lookups for due states
const resolveConcurrency = 8

// StudyItem is one entry of a study session
type StudyItem struct {
	Item  domain.Item
	State *domain.ReviewState // nil for new items
}

// IsNew reports whether the item is introduced for the first time
func (s StudyItem) IsNew() bool {
	return s.State == nil
}

// SelectInput describes a session request
type SelectInput struct {
	UserID      string
	Limit       int
	NewDailyCap int
	Now         time.Time

	// StartAfterRank skips new items with rank <= the watermark when positive
	StartAfterRank int
	// StartAfterID skips new items at or before this item in catalog order
	StartAfterID string
}

// Selector builds study sessions from due reviews and new items
type Selector struct {
	reviews repository.ReviewRepository
	items   repository.ItemRepository
	logger  *zap.Logger
}

// NewSelector creates a new selector
func NewSelector(reviews repository.ReviewRepository, items repository.ItemRepository, logger *zap.Logger) *Selector {
	return &Selector{
		reviews: reviews,
		items:   items,
		logger:  logger,
	}
}

// Select returns due reviews first, then new items, never more than in.Limit
func (s *Selector) Select(ctx context.Context, in SelectInput) ([]StudyItem, error) {
	if in.Limit <= 0 {
		return []StudyItem{}, nil
	}

	states, err := s.reviews.FindDueByUser(ctx, in.UserID, in.Now, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find due reviews: %w", err)
	}

	session, err := s.resolveDue(ctx, states)
	if err != nil {
		return nil, err
	}

	if len(session) >= in.Limit {
		return session[:in.Limit], nil
	}

	introducedToday, err := s.reviews.CountIntroductionsOnDate(ctx, in.UserID, in.Now)
	if err != nil {
		return nil, fmt.Errorf("failed to count introductions: %w", err)
	}

	topUp := min(max(0, in.NewDailyCap-introducedToday), in.Limit-len(session))
	if topUp <= 0 {
		s.logger.Debug("New item budget exhausted",
			zap.String("user_id", in.UserID),
			zap.Int("due", len(session)),
			zap.Int("introduced_today", introducedToday))
		return session, nil
	}

	fresh, err := s.selectNew(ctx, in, session, topUp)
	if err != nil {
		return nil, err
	}

	return append(session, fresh...), nil
}

// resolveDue looks up the item of every due state, keeping order and
// dropping states whose item left the catalog
func (s *Selector) resolveDue(ctx context.Context, states []domain.ReviewState) ([]StudyItem, error) {
	resolved := make([]*domain.Item, len(states))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i := range states {
		i := i
		g.Go(func() error {
			it, err := s.items.FindByID(gctx, states[i].ItemID)
			if err != nil {
				return fmt.Errorf("failed to resolve item %s: %w", states[i].ItemID, err)
			}
			resolved[i] = it
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	session := make([]StudyItem, 0, len(states))
	for i, it := range resolved {
		if it == nil {
			s.logger.Warn("Dropping review state for missing item",
				zap.String("user_id", states[i].UserID),
				zap.String("item_id", states[i].ItemID))
			continue
		}
		state := states[i]
		session = append(session, StudyItem{Item: *it, State: &state})
	}
	return session, nil
}

// selectNew walks the active catalog in rank order and takes up to budget
// items the learner has never seen
func (s *Selector) selectNew(ctx context.Context, in SelectInput, due []StudyItem, budget int) ([]StudyItem, error) {
	var (
		catalog    []domain.Item
		introduced []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = s.items.ListAllActive(gctx)
		if err != nil {
			return fmt.Errorf("failed to list catalog: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		introduced, err = s.reviews.ListIntroducedItemIDs(gctx, in.UserID)
		if err != nil {
			return fmt.Errorf("failed to list introduced items: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(due)+len(introduced))
	for _, d := range due {
		skip[d.Item.ID] = struct{}{}
	}
	for _, id := range introduced {
		skip[id] = struct{}{}
	}

	watermark := in.StartAfterRank
	if in.StartAfterID != "" {
		for _, it := range catalog {
			if it.ID == in.StartAfterID {
				watermark = max(watermark, it.Rank)
				break
			}
		}
	}

	fresh := make([]StudyItem, 0, budget)
	for _, it := range catalog {
		if len(fresh) >= budget {
			break
		}
		if _, ok := skip[it.ID]; ok {
			continue
		}
		if watermark > 0 && it.Rank <= watermark {
			continue
		}
		fresh = append(fresh, StudyItem{Item: it})
	}
	return fresh, nil
}
