package handler

import (
	"context"
	"strconv"
	"sync"
	"time"

	"cebuano/internal/domain"
	"cebuano/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// requestTimeout bounds the store calls made for one bot update
const requestTimeout = 10 * time.Second

// Handler manages all bot interactions
type Handler struct {
	bot    *tele.Bot
	study  *service.StudyService
	logger *zap.Logger

	// User states (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex

	// Serializes callbacks per user so double taps don't record twice
	callbackLocks map[int64]*sync.Mutex
	callbackMux   sync.Mutex
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	study *service.StudyService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:           bot,
		study:         study,
		logger:        logger,
		states:        make(map[int64]*domain.StateData),
		callbackLocks: make(map[int64]*sync.Mutex),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/study", h.handleStudyFlashcards)
	h.bot.Handle("/phrases", h.handleStudyPhrases)
	h.bot.Handle("/progress", h.handleProgress)
	h.bot.Handle("/settings", h.handleSettings)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnStudy, h.handleStudyFlashcards)
	h.bot.Handle(&btnPhrases, h.handleStudyPhrases)
	h.bot.Handle(&btnProgress, h.handleProgress)
	h.bot.Handle(&btnMainMenu, h.handleStart)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle})
}

// lockUser serializes work for one user and returns the unlock function
func (h *Handler) lockUser(userID int64) func() {
	h.callbackMux.Lock()
	lock, exists := h.callbackLocks[userID]
	if !exists {
		lock = &sync.Mutex{}
		h.callbackLocks[userID] = lock
	}
	h.callbackMux.Unlock()

	lock.Lock()
	return lock.Unlock
}

func learnerID(c tele.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// Inline keyboard buttons
var (
	btnStudy = tele.Btn{
		Unique: "study",
		Text:   "📚 Study words",
	}
	btnPhrases = tele.Btn{
		Unique: "phrases",
		Text:   "💬 Study phrases",
	}
	btnProgress = tele.Btn{
		Unique: "progress",
		Text:   "📈 Progress",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Main menu",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnStudy),
		menu.Row(btnPhrases),
		menu.Row(btnProgress),
	)
	return menu
}
