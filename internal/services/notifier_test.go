package services

import (
	"testing"

	"github.com/asaskevich/EventBus"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akimenko/resume-pilot/internal/config"
	"github.com/akimenko/resume-pilot/internal/events"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func Test_Notifier_SendsOnEvents(t *testing.T) {
	bus := EventBus.New()
	notifier, err := NewNotifier(config.NotifyConfig{}, bus)
	require.NoError(t, err)

	sender := &fakeSender{}
	notifier.sender = sender
	notifier.chatID = 42

	bus.Publish(events.JobsImportedTopic, events.JobsImported{
		Imported: 2, Skipped: 1, Companies: []string{"Acme", "Globex"},
	})
	bus.Publish(events.VariantGeneratedTopic, events.VariantGenerated{
		VariantID: "v1", JobTitle: "Platform Engineer", Company: "Acme", Score: 82.5, Grade: "A-",
	})

	require.Len(t, sender.sent, 2)

	first := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Contains(t, first.Text, "Imported 2 jobs")
	assert.Contains(t, first.Text, "Acme, Globex")
	assert.EqualValues(t, 42, first.ChatID)

	second := sender.sent[1].(tgbotapi.MessageConfig)
	assert.Contains(t, second.Text, "Platform Engineer")
	assert.Contains(t, second.Text, "82.5")
	assert.Contains(t, second.Text, "A-")
}

func Test_Notifier_DisabledIsSilent(t *testing.T) {
	bus := EventBus.New()
	_, err := NewNotifier(config.NotifyConfig{}, bus)
	require.NoError(t, err)

	// no sender configured, publishing must not panic
	bus.Publish(events.JobsImportedTopic, events.JobsImported{Imported: 1})
}
