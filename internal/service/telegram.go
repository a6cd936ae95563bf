package service

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type TelegramConfig struct {
	BotToken  string
	ChannelID int64
}

// BotVerifier checks channel membership through the Telegram Bot API.
type BotVerifier struct {
	bot       *tgbotapi.BotAPI
	channelID int64
}

func NewBotVerifier(cfg TelegramConfig) (*BotVerifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	return &BotVerifier{
		bot:       bot,
		channelID: cfg.ChannelID,
	}, nil
}

func (v *BotVerifier) IsChannelMember(_ context.Context, telegramID int64) (bool, error) {
	member, err := v.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: v.channelID,
			UserID: telegramID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to get chat member: %w", err)
	}

	switch member.Status {
	case "creator", "administrator", "member":
		return true, nil
	default:
		return false, nil
	}
}
