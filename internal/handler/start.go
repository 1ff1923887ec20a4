package handler

import (
	"fmt"
	"strconv"
	"strings"

	"cebuano/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const mainMenuText = "🏠 Main menu\n\nWhat would you like to practice?"

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	h.ResetState(userID)
	return h.reply(c, "Maayong adlaw! 👋\n\n"+mainMenuText, mainMenuMarkup())
}

// handleProgress shows totals, due counts and streaks for every kind
func (h *Handler) handleProgress(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	var b strings.Builder
	b.WriteString("📈 Your progress\n")
	for _, kind := range []domain.ItemKind{domain.KindFlashcard, domain.KindPhrase} {
		progress, err := h.study.Progress(ctx, kind, learnerID(c))
		if err != nil {
			h.logger.Error("Failed to load progress", zap.String("kind", string(kind)), zap.Error(err))
			return h.fail(c, "Could not load your progress")
		}
		fmt.Fprintf(&b, "\n%s\nReviews: %d\nDue now: %d\nStreak: %d day(s)\n",
			kindTitle(kind), progress.TotalLearned, progress.DueToday, progress.Streak)
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnMainMenu))
	return h.reply(c, b.String(), markup)
}

// settingKeys maps /settings keys to the field they change
var settingKeys = map[string]func(*domain.Settings) *int{
	"session_limit":     func(s *domain.Settings) *int { return &s.SessionLimit },
	"new_daily_cap":     func(s *domain.Settings) *int { return &s.NewDailyCap },
	"daily_review_cap":  func(s *domain.Settings) *int { return &s.DailyReviewCap },
	"last_learned_rank": func(s *domain.Settings) *int { return &s.LastLearnedRank },
}

// handleSettings shows settings, or changes one with /settings <key> <value>
func (h *Handler) handleSettings(c tele.Context) error {
	ctx, cancel := requestContext()
	defer cancel()

	userID := learnerID(c)
	settings, err := h.study.Settings().GetSettings(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to load settings", zap.String("user_id", userID), zap.Error(err))
		return c.Send("Something went wrong. Please try again later.")
	}

	args := c.Args()
	if len(args) == 0 {
		return c.Send(formatSettings(settings))
	}

	if len(args) != 2 {
		return c.Send("Usage: /settings <key> <value>\nKeys: session_limit, new_daily_cap, daily_review_cap, last_learned_rank")
	}

	field, ok := settingKeys[args[0]]
	if !ok {
		return c.Send(fmt.Sprintf("Unknown setting %q", args[0]))
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		return c.Send("The value must be a whole number")
	}
	*field(&settings) = value

	stored, err := h.study.Settings().UpdateSettings(ctx, userID, settings)
	if err != nil {
		h.logger.Error("Failed to update settings", zap.String("user_id", userID), zap.Error(err))
		return c.Send("Something went wrong. Please try again later.")
	}

	h.logger.Info("Settings updated",
		zap.String("user_id", userID),
		zap.String("key", args[0]),
		zap.Int("value", value))
	return c.Send("✅ Saved\n\n" + formatSettings(stored))
}

func formatSettings(s domain.Settings) string {
	return fmt.Sprintf("⚙️ Settings\n\nsession_limit: %d\nnew_daily_cap: %d\ndaily_review_cap: %d\nlast_learned_rank: %d",
		s.SessionLimit, s.NewDailyCap, s.DailyReviewCap, s.LastLearnedRank)
}

func kindTitle(kind domain.ItemKind) string {
	if kind == domain.KindPhrase {
		return "💬 Phrases"
	}
	return "📚 Words"
}
