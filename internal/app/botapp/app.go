package botapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/darktohka/confessions-bot/internal/app/bootstrap"
	"github.com/darktohka/confessions-bot/internal/config"
	"github.com/darktohka/confessions-bot/internal/domain/enums"
	tginfra "github.com/darktohka/confessions-bot/internal/infra/telegram"
	confsvc "github.com/darktohka/confessions-bot/internal/services/confession"
	"github.com/darktohka/confessions-bot/internal/services/stats"
)

const awaitTTL = 15 * time.Minute

const (
	confessCallbackData = "confess:press"
	confessButtonLabel  = "🙊 Confess"

	promptInstruction    = "Tap the button below to share an anonymous confession."
	dmInstruction        = "Send me your confession as one message. To tag it, end with a line like \"Categories: love, campus\"."
	dmUnreachableAnswer  = "Open a private chat with me first, then press the button again."
	notModeratorAnswer   = "Moderators only."
	pendingReply         = "Your confession was sent to the moderators for review."
	publishedReply       = "Your confession was published. Thank you for sharing."
	discardedReply       = "Rejected."
	approvedReply        = "Approved and published."
	noDestinationReply   = "No confession destination is configured for this community yet."
	nothingPendingReply  = "The review queue is empty."
	deliveryFailedReply  = "The confession was accepted but could not be posted. Check the destination chat."
	saveWarningSuffix    = " (warning: the change could not be saved to disk)"
	categoriesLinePrefix = "categories:"
)

// awaiting tracks a submitter who pressed the confess button and owes us a
// DM with the confession text.
type awaiting struct {
	CommunityID int64
	StartedAt   time.Time
}

type App struct {
	cfg          config.Config
	logger       *zap.Logger
	bot          *tginfra.Bot
	service      *confsvc.Service
	statsService *stats.Service
	deliverer    *tginfra.Deliverer
	moderators   map[int64]bool

	awaitMu     sync.Mutex
	awaitByUser map[int64]awaiting
}

// New wires the bot surface over the process-wide components, so its store
// is the same instance every other surface mutates.
func New(cfg config.Config, log *zap.Logger, comps *bootstrap.Components) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if comps == nil {
		return nil, fmt.Errorf("components are nil")
	}
	if strings.TrimSpace(cfg.Bot.Token) == "" {
		return nil, fmt.Errorf("bot token is empty")
	}

	bot, err := tginfra.NewBot(cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	deliverer, err := tginfra.NewDeliverer(bot)
	if err != nil {
		return nil, err
	}

	moderators := make(map[int64]bool, len(cfg.Bot.Moderators))
	for _, id := range cfg.Bot.Moderators {
		moderators[id] = true
	}

	return &App{
		cfg:          cfg,
		logger:       log,
		bot:          bot,
		service:      comps.Service,
		statsService: comps.StatsService,
		deliverer:    deliverer,
		moderators:   moderators,
		awaitByUser:  make(map[int64]awaiting),
	}, nil
}

// Deliverer exposes the bot-backed deliverer for sibling surfaces in the
// same process.
func (a *App) Deliverer() confsvc.Deliverer {
	return a.deliverer
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("confession bot started")

	err := a.bot.Listen(ctx, tginfra.Handlers{
		OnCommand:  a.handleCommand,
		OnText:     a.handleText,
		OnCallback: a.handleCallback,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	a.logger.Info("confession bot stopped")
	return nil
}

func (a *App) isModerator(userID int64) bool {
	return a.moderators[userID]
}

func (a *App) handleCallback(ctx context.Context, update tginfra.CallbackUpdate) error {
	if strings.TrimSpace(update.Data) != confessCallbackData {
		return a.bot.AnswerCallback(ctx, update.CallbackID, "Unknown action")
	}

	if err := a.statsService.Increment(update.UserID); err != nil {
		a.logger.Warn("failed to persist button stats", zap.Error(err))
	}

	a.awaitMu.Lock()
	a.awaitByUser[update.UserID] = awaiting{
		CommunityID: update.ChatID,
		StartedAt:   time.Now(),
	}
	a.awaitMu.Unlock()

	// DMs fail until the user has started the bot; the callback answer is
	// the only channel left to tell them that.
	if err := a.bot.SendText(ctx, update.UserID, dmInstruction); err != nil {
		a.awaitMu.Lock()
		delete(a.awaitByUser, update.UserID)
		a.awaitMu.Unlock()
		return a.bot.AnswerCallback(ctx, update.CallbackID, dmUnreachableAnswer)
	}

	return a.bot.AnswerCallback(ctx, update.CallbackID, "Check your private chat")
}

func (a *App) handleText(ctx context.Context, update tginfra.TextUpdate) error {
	// Confession texts only arrive over DM.
	if update.ChatID != update.UserID {
		return nil
	}

	a.awaitMu.Lock()
	state, ok := a.awaitByUser[update.UserID]
	if ok {
		delete(a.awaitByUser, update.UserID)
	}
	a.awaitMu.Unlock()
	if !ok || time.Since(state.StartedAt) > awaitTTL {
		return a.bot.SendText(ctx, update.ChatID, promptInstruction)
	}

	content, categories := splitCategories(update.Text)
	return a.submitConfession(ctx, update.ChatID, state.CommunityID, update.UserID, content, categories)
}

func (a *App) submitConfession(ctx context.Context, replyChatID, community, submitter int64, content, categories string) error {
	disp, err := a.service.Submit(community, submitter, content, categories)
	if err != nil {
		return a.bot.SendText(ctx, replyChatID, submitErrorMessage(err))
	}

	switch disp.Outcome {
	case enums.OutcomeBlocked:
		return a.bot.SendText(ctx, replyChatID, cooldownMessage(disp.RetryAfterSec))
	case enums.OutcomePending:
		return a.bot.SendText(ctx, replyChatID, pendingReply)
	case enums.OutcomePublished:
		if _, err := a.deliverer.Deliver(ctx, disp.Destination, disp.Rendered); err != nil {
			a.logger.Error("confession delivery failed", zap.Error(err))
			return a.bot.SendText(ctx, replyChatID, deliveryFailedReply)
		}
		return a.bot.SendText(ctx, replyChatID, publishedReply)
	default:
		return a.bot.SendText(ctx, replyChatID, "Something went wrong, try again later.")
	}
}

func cooldownMessage(retryAfterSec int64) string {
	return fmt.Sprintf("Please wait %s before confessing again.", formatDuration(retryAfterSec))
}

func formatDuration(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	if d >= time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

func submitErrorMessage(err error) string {
	switch {
	case errors.Is(err, confsvc.ErrNoDestination):
		return noDestinationReply
	case errors.Is(err, confsvc.ErrEmptyContent):
		return "Your confession is empty."
	case errors.Is(err, confsvc.ErrContentTooLong):
		return "Your confession is too long, keep it under 2000 characters."
	case errors.Is(err, confsvc.ErrCategoriesTooLong):
		return "The categories line is too long, keep it under 200 characters."
	default:
		return "Something went wrong, try again later."
	}
}

// splitCategories peels an optional trailing "Categories: ..." line off a
// confession text.
func splitCategories(text string) (content, categories string) {
	trimmed := strings.TrimSpace(text)
	idx := strings.LastIndex(trimmed, "\n")
	if idx < 0 {
		return trimmed, ""
	}

	last := strings.TrimSpace(trimmed[idx+1:])
	if strings.HasPrefix(strings.ToLower(last), categoriesLinePrefix) {
		return strings.TrimSpace(trimmed[:idx]), strings.TrimSpace(last[len(categoriesLinePrefix):])
	}
	return trimmed, ""
}

func parseIntArg(args string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
