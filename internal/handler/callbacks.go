package handler

import (
	"strings"
	"unicode"

	"cebuano/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	actionShow = "show"
	actionRate = "rate"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// showData builds the callback data of a "Show answer" button
func showData(kind domain.ItemKind, itemID string) string {
	return actionShow + "_" + string(kind) + "_" + itemID
}

// rateData builds the callback data of a rating button
func rateData(kind domain.ItemKind, itemID string, rating domain.Rating) string {
	return actionRate + "_" + string(kind) + "_" + itemID + "_" + string(rating)
}

// studyCallback is a parsed show or rate callback
type studyCallback struct {
	Action string
	Kind   domain.ItemKind
	ItemID string
	Rating domain.Rating
}

// parseStudyCallback parses data built by showData or rateData. Item ids may
// contain underscores; the kind and rating never do.
func parseStudyCallback(data string) (studyCallback, bool) {
	parts := strings.Split(data, "_")
	if len(parts) < 3 {
		return studyCallback{}, false
	}

	kind, err := domain.ParseItemKind(parts[1])
	if err != nil {
		return studyCallback{}, false
	}
	cb := studyCallback{Action: parts[0], Kind: kind}

	switch cb.Action {
	case actionShow:
		cb.ItemID = strings.Join(parts[2:], "_")
	case actionRate:
		if len(parts) < 4 {
			return studyCallback{}, false
		}
		rating, err := domain.ParseRating(parts[len(parts)-1])
		if err != nil {
			return studyCallback{}, false
		}
		cb.Rating = rating
		cb.ItemID = strings.Join(parts[2:len(parts)-1], "_")
	default:
		return studyCallback{}, false
	}

	if cb.ItemID == "" {
		return studyCallback{}, false
	}
	return cb, true
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// If message is not modified, it means it was already edited by another callback
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// reply edits the message behind a callback, or sends a new one for commands
func (h *Handler) reply(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if c.Callback() == nil {
		return c.Send(text, markup)
	}

	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil // Message was already modified, just acknowledged
		}
		return c.Send(text, markup)
	}
	return c.Respond()
}

// fail reports an error as a callback toast or a plain message
func (h *Handler) fail(c tele.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text})
	}
	return c.Send(text)
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Handle specific button callbacks by Unique first
	switch callback.Unique {
	case "study":
		return h.handleStudyFlashcards(c)
	case "phrases":
		return h.handleStudyPhrases(c)
	case "progress":
		return h.handleProgress(c)
	case "main_menu":
		return h.handleStart(c)
	}

	if cb, ok := parseStudyCallback(data); ok {
		unlock := h.lockUser(c.Sender().ID)
		defer unlock()

		if cb.Action == actionShow {
			return h.handleShowAnswer(c, cb.Kind, cb.ItemID)
		}
		return h.handleRate(c, cb.Kind, cb.ItemID, cb.Rating)
	}

	// If it's not handled, acknowledge it anyway
	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}
