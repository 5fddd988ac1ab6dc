package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// OperatorNotifier surfaces login codes to developers. Never wired in production.
type OperatorNotifier interface {
	NotifyCode(email, code string) error
}

type logNotifier struct{}

func NewLogNotifier() OperatorNotifier { return logNotifier{} }

func (logNotifier) NotifyCode(email, code string) error {
	log.Printf("[2fa][dev] code for %s: %s", email, code)
	return nil
}

type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithEndpoint(botToken, chatID, tgbotapi.APIEndpoint)
}

// NewTelegramNotifierWithEndpoint talks to a custom Bot API endpoint (format "<base>/bot%s/%s").
func NewTelegramNotifierWithEndpoint(botToken string, chatID int64, endpoint string) (*TelegramNotifier, error) {
	if botToken == "" || chatID == 0 {
		return nil, fmt.Errorf("telegram notifier: token and chat id are required")
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(botToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram notifier: %w", err)
	}
	log.Printf("[tg] operator channel ready bot=@%s chatID=%d", bot.Self.UserName, chatID)
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) NotifyCode(email, code string) error {
	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf("[geekdeals][2fa] %s: %s", email, code))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}

// multiNotifier fans out to every notifier; the first error is returned after all ran.
type multiNotifier []OperatorNotifier

func NewMultiNotifier(ns ...OperatorNotifier) OperatorNotifier {
	out := make(multiNotifier, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multiNotifier) NotifyCode(email, code string) error {
	var first error
	for _, n := range m {
		if err := n.NotifyCode(email, code); err != nil && first == nil {
			first = err
		}
	}
	return first
}
