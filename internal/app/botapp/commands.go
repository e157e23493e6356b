package botapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/darktohka/confessions-bot/internal/domain/enums"
	"github.com/darktohka/confessions-bot/internal/domain/model"
	tginfra "github.com/darktohka/confessions-bot/internal/infra/telegram"
	"github.com/darktohka/confessions-bot/internal/pkg/validate"
	confsvc "github.com/darktohka/confessions-bot/internal/services/confession"
	"github.com/darktohka/confessions-bot/internal/services/review"
)

func (a *App) handleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	command := strings.ToLower(strings.TrimSpace(update.Command))

	if command == "confess" {
		return a.handleConfessCommand(ctx, update)
	}
	if command == "start" || command == "help" {
		return a.bot.SendText(ctx, update.ChatID, promptInstruction)
	}

	if !a.isModerator(update.UserID) {
		return a.bot.SendText(ctx, update.ChatID, notModeratorAnswer)
	}

	community := update.ChatID
	switch command {
	case "confessembed":
		return a.bot.SendConfessPrompt(ctx, update.ChatID, promptInstruction, confessButtonLabel, confessCallbackData)
	case "review_list":
		return a.sendReviewList(ctx, update.ChatID, community)
	case "approve":
		return a.resolvePending(ctx, update.ChatID, community, update.Args, true)
	case "reject":
		return a.resolvePending(ctx, update.ChatID, community, update.Args, false)
	case "set_cooldown":
		return a.setCooldown(ctx, update.ChatID, community, update.Args)
	case "set_destination":
		return a.setDestination(ctx, update.ChatID, community, update.Args)
	case "blacklist_add":
		return a.mutatePolicy(ctx, update.ChatID, func() error {
			return a.service.AddBlacklistTerm(community, update.Args)
		}, fmt.Sprintf("Added %q to the blacklist.", strings.TrimSpace(update.Args)))
	case "blacklist_remove":
		return a.mutatePolicy(ctx, update.ChatID, func() error {
			return a.service.RemoveBlacklistTerm(community, update.Args)
		}, fmt.Sprintf("Removed %q from the blacklist.", strings.TrimSpace(update.Args)))
	case "blacklist_list":
		return a.sendList(ctx, update.ChatID, "Blacklisted terms", a.service.BlacklistTerms(community))
	case "category_add":
		return a.mutatePolicy(ctx, update.ChatID, func() error {
			return a.service.AddCategory(community, update.Args)
		}, fmt.Sprintf("Added category %q.", strings.TrimSpace(update.Args)))
	case "category_remove":
		return a.mutatePolicy(ctx, update.ChatID, func() error {
			return a.service.RemoveCategory(community, update.Args)
		}, fmt.Sprintf("Removed category %q.", strings.TrimSpace(update.Args)))
	case "category_list":
		return a.sendList(ctx, update.ChatID, "Categories", a.service.Categories(community))
	case "buttonstats":
		return a.sendButtonStats(ctx, update.ChatID)
	default:
		return nil
	}
}

// handleConfessCommand covers the DM fallback for users who prefer typing
// "/confess <community_id> <text>" over the button flow.
func (a *App) handleConfessCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	if update.ChatID != update.UserID {
		return a.bot.SendText(ctx, update.ChatID, promptInstruction)
	}

	fields := strings.SplitN(strings.TrimSpace(update.Args), " ", 2)
	community, ok := parseIntArg(fields[0])
	if !ok || len(fields) < 2 {
		return a.bot.SendText(ctx, update.ChatID, "Usage: /confess <community_id> <text>")
	}

	content, categories := splitCategories(fields[1])
	return a.submitConfession(ctx, update.ChatID, community, update.UserID, content, categories)
}

func (a *App) sendReviewList(ctx context.Context, chatID, community int64) error {
	pending := a.service.ListPending(community)
	if len(pending) == 0 {
		return a.bot.SendText(ctx, chatID, nothingPendingReply)
	}

	lines := make([]string, 0, len(pending)+1)
	lines = append(lines, fmt.Sprintf("Pending confessions: %d", len(pending)))
	for _, pc := range pending {
		preview := validate.Truncate(pc.Content, 100)
		lines = append(lines, fmt.Sprintf("%s\n  author %s\n  flagged: %s\n  %s",
			pc.ID, shortTag(pc.AuthorTag), strings.Join(pc.FlaggedTerms, ", "), preview))
	}
	return a.bot.SendText(ctx, chatID, strings.Join(lines, "\n\n"))
}

// shortTag abbreviates an author tag for display. Tags are normally 64 hex
// chars, but a hand-edited store file may hold anything.
func shortTag(tag string) string {
	if len(tag) > 12 {
		return tag[:12]
	}
	return tag
}

func (a *App) resolvePending(ctx context.Context, chatID, community int64, args string, approve bool) error {
	pendingID := strings.TrimSpace(args)
	if pendingID == "" {
		return a.bot.SendText(ctx, chatID, "Usage: /approve <id> or /reject <id>")
	}

	decision := enums.DecisionReject
	if approve {
		decision = enums.DecisionApprove
	}
	disp, err := a.service.Resolve(community, pendingID, decision)
	if err != nil {
		return a.bot.SendText(ctx, chatID, resolveErrorMessage(err))
	}

	if !approve {
		return a.bot.SendText(ctx, chatID, discardedReply)
	}

	if _, err := a.deliverer.Deliver(ctx, disp.Destination, disp.Rendered); err != nil {
		a.logger.Error("confession delivery failed", zap.Error(err))
		return a.bot.SendText(ctx, chatID, deliveryFailedReply)
	}
	return a.bot.SendText(ctx, chatID, approvedReply)
}

func (a *App) setCooldown(ctx context.Context, chatID, community int64, args string) error {
	seconds, ok := parseIntArg(args)
	if !ok {
		return a.bot.SendText(ctx, chatID, "Usage: /set_cooldown <seconds> (0 disables)")
	}

	reply := fmt.Sprintf("Cooldown set to %d seconds.", seconds)
	if seconds == 0 {
		reply = "Cooldown disabled."
	}
	return a.mutatePolicy(ctx, chatID, func() error {
		return a.service.SetCooldownSeconds(community, seconds)
	}, reply)
}

// setDestination points the community at a destination chat. With no
// arguments the current chat becomes the destination; one argument is a
// topic id inside the current chat; two are an explicit chat and topic.
func (a *App) setDestination(ctx context.Context, chatID, community int64, args string) error {
	dest := model.Destination{ChatID: chatID}

	fields := strings.Fields(strings.TrimSpace(args))
	switch len(fields) {
	case 0:
	case 1:
		topicID, ok := parseIntArg(fields[0])
		if !ok {
			return a.bot.SendText(ctx, chatID, "Usage: /set_destination [topic_id] or /set_destination <chat_id> <topic_id>")
		}
		dest.TopicID = topicID
	default:
		destChat, okChat := parseIntArg(fields[0])
		topicID, okTopic := parseIntArg(fields[1])
		if !okChat || !okTopic {
			return a.bot.SendText(ctx, chatID, "Usage: /set_destination [topic_id] or /set_destination <chat_id> <topic_id>")
		}
		dest.ChatID = destChat
		dest.TopicID = topicID
	}

	return a.mutatePolicy(ctx, chatID, func() error {
		return a.service.SetDestination(community, dest)
	}, fmt.Sprintf("Confessions will be posted to chat %d.", dest.ChatID))
}

func (a *App) sendList(ctx context.Context, chatID int64, title string, items []string) error {
	if len(items) == 0 {
		return a.bot.SendText(ctx, chatID, title+": none")
	}
	return a.bot.SendText(ctx, chatID, title+":\n- "+strings.Join(items, "\n- "))
}

func (a *App) sendButtonStats(ctx context.Context, chatID int64) error {
	submitters, presses := a.statsService.Totals()
	if presses == 0 {
		return a.bot.SendText(ctx, chatID, "Nobody has pressed the confess button yet.")
	}

	lines := []string{fmt.Sprintf("Confess button: %d presses by %d users", presses, submitters)}
	for i, entry := range a.statsService.Top(10) {
		lines = append(lines, fmt.Sprintf("%d. user %d: %d", i+1, entry.SubmitterID, entry.Count))
	}
	return a.bot.SendText(ctx, chatID, strings.Join(lines, "\n"))
}

// mutatePolicy runs a policy change and reports the result, downgrading a
// failed save to a warning since the in-memory change already stands.
func (a *App) mutatePolicy(ctx context.Context, chatID int64, mutate func() error, successReply string) error {
	err := mutate()
	if err == nil {
		return a.bot.SendText(ctx, chatID, successReply)
	}
	if errors.Is(err, confsvc.ErrPersistence) {
		return a.bot.SendText(ctx, chatID, successReply+saveWarningSuffix)
	}
	return a.bot.SendText(ctx, chatID, policyErrorMessage(err))
}

func policyErrorMessage(err error) string {
	switch {
	case errors.Is(err, confsvc.ErrTermEmpty):
		return "The term must not be empty."
	case errors.Is(err, confsvc.ErrTermExists):
		return "That term is already blacklisted."
	case errors.Is(err, confsvc.ErrTermNotFound):
		return "That term is not on the blacklist."
	case errors.Is(err, confsvc.ErrCategoryEmpty):
		return "The category name must not be empty."
	case errors.Is(err, confsvc.ErrCategoryTooLong):
		return "Category names must stay under 50 characters."
	case errors.Is(err, confsvc.ErrCategoryExists):
		return "That category already exists."
	case errors.Is(err, confsvc.ErrCategoryNotFound):
		return "That category does not exist."
	case errors.Is(err, confsvc.ErrNegativeCooldown):
		return "The cooldown must not be negative."
	default:
		return "Something went wrong, try again later."
	}
}

func resolveErrorMessage(err error) string {
	switch {
	case errors.Is(err, review.ErrPendingNotFound):
		return "No pending confession with that id."
	case errors.Is(err, review.ErrWrongCommunity):
		return "That confession belongs to a different community."
	case errors.Is(err, confsvc.ErrNoDestination):
		return noDestinationReply
	default:
		return "Something went wrong, try again later."
	}
}
