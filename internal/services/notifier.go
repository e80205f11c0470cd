package services

import (
	"fmt"
	"strings"

	"github.com/akimenko/resume-pilot/internal/config"
	"github.com/akimenko/resume-pilot/internal/events"
	"github.com/akimenko/resume-pilot/internal/logger"
	"github.com/asaskevich/EventBus"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier pushes Telegram messages when jobs are imported or a variant
// finishes generating. It is a no-op when Telegram is disabled.
type Notifier struct {
	sender messageSender
	chatID int64
}

func NewNotifier(cfg config.NotifyConfig, bus EventBus.Bus) (*Notifier, error) {

	notifier := &Notifier{chatID: cfg.TelegramChatID}

	if cfg.TelegramEnabled {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return nil, fmt.Errorf("failed to create telegram bot: %w", err)
		}
		notifier.sender = bot
	}

	if err := bus.Subscribe(events.JobsImportedTopic, notifier.onJobsImported); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.VariantGeneratedTopic, notifier.onVariantGenerated); err != nil {
		return nil, err
	}

	return notifier, nil
}

func (n *Notifier) onJobsImported(event events.JobsImported) {
	if len(event.Companies) == 0 {
		n.notify(fmt.Sprintf("Imported %v jobs (%v skipped)", event.Imported, event.Skipped))
		return
	}
	n.notify(fmt.Sprintf("Imported %v jobs (%v skipped) from %v",
		event.Imported, event.Skipped, strings.Join(event.Companies, ", ")))
}

func (n *Notifier) onVariantGenerated(event events.VariantGenerated) {
	n.notify(fmt.Sprintf("Resume variant ready for %v at %v: score %.1f (%v)",
		event.JobTitle, event.Company, event.Score, event.Grade))
}

func (n *Notifier) notify(text string) {
	if n.sender == nil {
		return
	}
	if _, err := n.sender.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
			Errorf("failed to send notification: %v", err)
	}
}
