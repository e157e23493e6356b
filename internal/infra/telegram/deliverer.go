package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/darktohka/confessions-bot/internal/domain/model"
)

// Deliverer posts rendered confessions to a community's configured
// destination chat. It satisfies the confession service's Deliverer
// interface.
type Deliverer struct {
	bot *Bot
}

func NewDeliverer(bot *Bot) (*Deliverer, error) {
	if bot == nil || bot.api == nil {
		return nil, fmt.Errorf("telegram bot is not initialized")
	}
	return &Deliverer{bot: bot}, nil
}

func (d *Deliverer) Deliver(ctx context.Context, dest model.Destination, rendered model.RenderedConfession) (int64, error) {
	if dest.ChatID == 0 {
		return 0, fmt.Errorf("destination chat id is required")
	}

	msg := tgbotapi.NewMessage(dest.ChatID, formatConfession(rendered))
	if dest.TopicID != 0 {
		// The bot api library predates forum topics; replying to the
		// topic's root message routes the post into the topic.
		msg.ReplyToMessageID = int(dest.TopicID)
	}

	sent, err := d.bot.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("deliver confession: %w", err)
	}

	_ = ctx
	return int64(sent.MessageID), nil
}

func formatConfession(rendered model.RenderedConfession) string {
	var sb strings.Builder
	sb.WriteString(rendered.Title)
	sb.WriteString("\n\n")
	sb.WriteString(rendered.Body)
	if strings.TrimSpace(rendered.Categories) != "" {
		sb.WriteString("\n\nCategories: ")
		sb.WriteString(rendered.Categories)
	}
	return sb.String()
}
