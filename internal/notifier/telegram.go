package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"LeverageGauge/internal/logger"
)

// Notifier delivers a formatted report to its audience.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) (*TelegramNotifier, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{Timeout: 75 * time.Second, Transport: transport}
	return newTelegramNotifier(botToken, id, tgbotapi.APIEndpoint, client)
}

// newTelegramNotifier builds a notifier against endpoint, a format string
// taking the token and method name.
func newTelegramNotifier(botToken string, chatID int64, endpoint string, client *http.Client) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(botToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     3,
		retryDelayBase: time.Second,
	}, nil
}

// Send sends an HTML message to the configured chat with exponential backoff.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.sendTo(ctx, t.chatID, text)
}

func (t *TelegramNotifier) sendTo(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	var lastErr error
	for i := 0; i < t.maxRetries; i++ {
		_, err := t.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		backoff := t.retryDelayBase * time.Duration(1<<uint(i))
		logger.Warnf("telegram send failed (attempt %d/%d): %v, retrying in %v", i+1, t.maxRetries, lastErr, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d retries exhausted: %w", t.maxRetries, lastErr)
}

// ListenForCommands long-polls for bot commands until ctx is cancelled.
// Commands from chats other than the configured one are ignored.
func (t *TelegramNotifier) ListenForCommands(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)
	logger.Infof("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			t.bot.StopReceivingUpdates()
			logger.Infof("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || msg.Chat == nil || msg.Chat.ID != t.chatID {
				continue
			}
			cmd := strings.TrimSpace(msg.Text)
			if msg.IsCommand() {
				cmd = "/" + msg.Command()
			}
			logger.Infof("received command: %s", cmd)
			if reply := handler(ctx, cmd); reply != "" {
				if err := t.sendTo(ctx, msg.Chat.ID, reply); err != nil {
					logger.Errorf("send reply: %v", err)
				}
			}
		}
	}
}
