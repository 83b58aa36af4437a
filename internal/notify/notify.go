// Package notify alerts campus staff about newly submitted complaints.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"campusvoice/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Alert is the anonymized summary of a new complaint. It never carries
// the student's identity.
type Alert struct {
	ComplaintID uint
	Category    models.Category
	Title       string
	Department  string
}

type Notifier interface {
	ComplaintSubmitted(ctx context.Context, alert Alert) error
}

// Noop drops every alert.
type Noop struct{}

func (Noop) ComplaintSubmitted(context.Context, Alert) error { return nil }

// Sender is the part of *tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts alerts to a single staff chat.
type Telegram struct {
	bot    Sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify: telegram bot: %w", err)
	}
	slog.Info("telegram notifier authorized", "bot", bot.Self.UserName, "chat_id", chatID)
	return NewTelegramWithSender(bot, chatID), nil
}

func NewTelegramWithSender(bot Sender, chatID int64) *Telegram {
	return &Telegram{bot: bot, chatID: chatID}
}

func (t *Telegram) ComplaintSubmitted(ctx context.Context, a Alert) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatAlert(a))
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("notify: send complaint %d: %w", a.ComplaintID, err)
	}
	return nil
}

// FormatAlert renders the HTML message body sent to staff.
func FormatAlert(a Alert) string {
	dept := a.Department
	if dept == "" {
		dept = "unspecified"
	}
	return fmt.Sprintf("<b>New complaint #%d</b>\nCategory: %s\nDepartment: %s\n%s",
		a.ComplaintID, html.EscapeString(a.Category.Label()), html.EscapeString(dept), html.EscapeString(a.Title))
}
