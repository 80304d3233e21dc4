package audit

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"skinmuse/internal/models"
)

// TelegramAlerter отправляет важные события безопасности в чат дежурных.
type TelegramAlerter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	return NewTelegramAlerterWithEndpoint(token, tgbotapi.APIEndpoint, chatID, &http.Client{Timeout: 10 * time.Second})
}

// NewTelegramAlerterWithEndpoint: endpoint задаётся шаблоном как tgbotapi.APIEndpoint: "<base>/bot%s/%s".
func NewTelegramAlerterWithEndpoint(token, endpoint string, chatID int64, client *http.Client) (*TelegramAlerter, error) {
	if token == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram: token and chat id are required")
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &TelegramAlerter{bot: bot, chatID: chatID}, nil
}

func (t *TelegramAlerter) Alert(_ context.Context, ev models.SecurityEvent) error {
	msg := tgbotapi.NewMessage(t.chatID, formatAlert(ev))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func formatAlert(ev models.SecurityEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n%s\n", html.EscapeString(ev.Type), html.EscapeString(ev.Message))

	keys := make([]string, 0, len(ev.Meta))
	for k := range ev.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: <code>%s</code>\n", html.EscapeString(k), html.EscapeString(fmt.Sprint(ev.Meta[k])))
	}
	b.WriteString(ev.Timestamp.Format(time.RFC3339))
	return b.String()
}
