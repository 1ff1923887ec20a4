package handler

import (
	"errors"
	"fmt"

	"cebuano/internal/domain"
	"cebuano/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func (h *Handler) handleStudyFlashcards(c tele.Context) error {
	return h.showNext(c, domain.KindFlashcard)
}

func (h *Handler) handleStudyPhrases(c tele.Context) error {
	return h.showNext(c, domain.KindPhrase)
}

// showNext asks the question for the first item of a fresh session
func (h *Handler) showNext(c tele.Context, kind domain.ItemKind) error {
	userID := c.Sender().ID

	ctx, cancel := requestContext()
	defer cancel()

	items, err := h.study.Session(ctx, kind, learnerID(c), service.SessionOptions{Limit: 1})
	if err != nil {
		h.logger.Error("Failed to select session", zap.Int64("user_id", userID), zap.Error(err))
		return h.fail(c, "Could not load your cards")
	}

	if len(items) == 0 {
		h.ResetState(userID)
		markup := &tele.ReplyMarkup{}
		markup.Inline(markup.Row(btnMainMenu))
		return h.reply(c, "🎉 All done for now! Nothing is due and today's new items are used up.", markup)
	}

	next := items[0]
	h.SetState(userID, &domain.StateData{
		State:  domain.StateQuestion,
		Kind:   kind,
		ItemID: next.Item.ID,
	})

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("👀 Show answer", showData(kind, next.Item.ID))),
		markup.Row(btnMainMenu),
	)
	return h.reply(c, questionText(next), markup)
}

// handleShowAnswer reveals the translation and offers the rating buttons
func (h *Handler) handleShowAnswer(c tele.Context, kind domain.ItemKind, itemID string) error {
	userID := c.Sender().ID

	state := h.GetState(userID)
	if state.State != domain.StateQuestion || state.Kind != kind || state.ItemID != itemID {
		return c.Respond(&tele.CallbackResponse{Text: "This card is no longer active"})
	}

	ctx, cancel := requestContext()
	defer cancel()

	item, err := h.study.Item(ctx, kind, itemID)
	if err != nil {
		h.logger.Error("Failed to load item", zap.String("item_id", itemID), zap.Error(err))
		return h.fail(c, "Could not load this card")
	}

	h.SetState(userID, &domain.StateData{
		State:  domain.StateAnswered,
		Kind:   kind,
		ItemID: itemID,
	})

	markup := &tele.ReplyMarkup{}
	buttons := make([]tele.Btn, 0, len(domain.Ratings))
	for _, r := range domain.Ratings {
		buttons = append(buttons, markup.Data(r.Label(), rateData(kind, itemID, r)))
	}
	markup.Inline(markup.Row(buttons...))

	return h.reply(c, answerText(*item), markup)
}

// handleRate records the rating and moves on to the next card
func (h *Handler) handleRate(c tele.Context, kind domain.ItemKind, itemID string, rating domain.Rating) error {
	userID := c.Sender().ID

	state := h.GetState(userID)
	if state.State != domain.StateAnswered || state.Kind != kind || state.ItemID != itemID {
		return c.Respond(&tele.CallbackResponse{Text: "Already rated"})
	}

	ctx, cancel := requestContext()
	defer cancel()

	reviewState, err := h.study.Review(ctx, kind, learnerID(c), itemID, rating)
	if err != nil {
		if errors.Is(err, domain.ErrDailyLimitReached) {
			h.ResetState(userID)
			markup := &tele.ReplyMarkup{}
			markup.Inline(markup.Row(btnMainMenu))
			return h.reply(c, "⏰ You've hit today's review limit. Come back tomorrow!", markup)
		}
		h.logger.Error("Failed to record review",
			zap.Int64("user_id", userID),
			zap.String("item_id", itemID),
			zap.Error(err))
		return h.fail(c, "Could not save your answer")
	}

	h.logger.Info("Review recorded",
		zap.Int64("user_id", userID),
		zap.String("kind", string(kind)),
		zap.String("item_id", itemID),
		zap.String("rating", string(rating)),
		zap.Int("interval", reviewState.Interval))

	return h.showNext(c, kind)
}

func questionText(s service.StudyItem) string {
	label := "🔁 Review"
	if s.IsNew() {
		label = "✨ New"
	}
	return fmt.Sprintf("%s\n\n🇵🇭 %s", label, s.Item.Cebuano)
}

func answerText(item domain.Item) string {
	text := fmt.Sprintf("🇵🇭 %s\n🇬🇧 %s", item.Cebuano, item.English)
	if item.Explanation != "" {
		text += "\n\n💡 " + item.Explanation
	}
	return text + "\n\nHow well did you remember it?"
}
