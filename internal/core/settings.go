package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/leopold/internal/logging"
	"github.com/JonMunkholm/leopold/internal/orderparse"
	"github.com/JonMunkholm/leopold/internal/shop"
	"github.com/JonMunkholm/leopold/internal/telegram"
)

// Settings returns the saved bot settings.
func (s *Service) Settings() shop.Settings {
	return s.shop.Settings()
}

// SaveSettings stores the bot settings.
func (s *Service) SaveSettings(ctx context.Context, settings shop.Settings) (shop.Settings, error) {
	if err := s.shop.SaveSettings(ctx, settings); err != nil {
		return shop.Settings{}, err
	}
	saved := s.shop.Settings()
	logging.FromContext(ctx).Info("settings saved", "chat_id", saved.TelegramChatID, "token_set", saved.TelegramToken != "")
	return saved, nil
}

// TestBot sends the connectivity test message using candidate settings,
// or the saved settings when candidate is nil. Nothing is saved.
func (s *Service) TestBot(ctx context.Context, candidate *shop.Settings) error {
	settings := s.shop.Settings()
	if candidate != nil {
		settings = candidate.Trimmed()
	}
	if !settings.CanNotify() {
		return fmt.Errorf("test bot: %w", telegram.ErrNotConfigured)
	}

	if err := s.bot.SendMessage(ctx, settings.TelegramToken, settings.TelegramChatID, orderparse.TestMessage); err != nil {
		logging.FromContext(ctx).Warn("bot test failed", "chat_id", settings.TelegramChatID, "error", err)
		return fmt.Errorf("test bot: %w", err)
	}
	logging.FromContext(ctx).Info("bot test sent", "chat_id", settings.TelegramChatID)
	return nil
}
