package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"avito-scraper/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLen is Telegram's limit for one text message
const maxMessageLen = 4096

// TelegramNotifier sends newly found item URLs to a chat
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier authorizes the bot with token
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	log.Printf("Authorized on account %s\n", bot.Self.UserName)
	return NewTelegramNotifierWithBot(bot, chatID), nil
}

// NewTelegramNotifierWithBot wraps an already authorized bot
func NewTelegramNotifierWithBot(bot *tgbotapi.BotAPI, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// Publish implements scheduler.Sink
func (n *TelegramNotifier) Publish(ctx context.Context, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}

	for _, part := range splitMessage(formatItems(items), maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, part)
		msg.DisableWebPagePreview = true
		if _, err := n.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	return nil
}

// formatItems renders one batch as a plain text message
func formatItems(items []models.Item) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🆕 %d new listings (pass %d)\n", len(items), items[0].Pass)
	for _, item := range items {
		sb.WriteString(item.URL)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// splitMessage splits text on line boundaries into chunks of at most maxLen
// bytes; single lines longer than maxLen are cut on rune boundaries
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			parts = append(parts, strings.TrimRight(current.String(), "\n"))
			current.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if current.Len()+len(line)+1 > maxLen {
			flush()
			for len(line) > maxLen {
				cut := maxLen
				for cut > 0 && !utf8.RuneStart(line[cut]) {
					cut--
				}
				if cut == 0 {
					cut = maxLen
				}
				parts = append(parts, line[:cut])
				line = line[cut:]
			}
		}
		if len(line) > 0 {
			current.WriteString(line)
			current.WriteString("\n")
		}
	}
	flush()

	return parts
}
