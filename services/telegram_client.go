package services

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramClient отправляет служебные уведомления (напоминания о платежах)
// в настроенный чат. Если бот не настроен, клиент не создается и
// уведомления просто не отправляются.
type TelegramClient struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramClient создает клиент Telegram по токену бота и ID чата
func NewTelegramClient(token, chatID string) (*TelegramClient, error) {
	if token == "" || chatID == "" {
		return nil, fmt.Errorf("Telegram не настроен")
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("неверный chat ID: %s", chatID)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram бота: %w", err)
	}
	bot.Debug = false

	log.Printf("✅ Telegram бот авторизован: %s", bot.Self.UserName)

	return &TelegramClient{bot: bot, chatID: chatIDInt}, nil
}

// SendReminder отправляет текст напоминания в служебный чат
func (tc *TelegramClient) SendReminder(message string) error {
	msg := tgbotapi.NewMessage(tc.chatID, message)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := tc.bot.Send(msg); err != nil {
		return fmt.Errorf("ошибка отправки сообщения: %w", err)
	}
	return nil
}
