package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"mealsync/internal/mealplan"
)

// Notifier announces plan lifecycle events. Implementations must be
// safe to call fire-and-forget; delivery failures are the caller's to
// log, not to surface.
type Notifier interface {
	PlanSaved(plan mealplan.SavedPlan) error
	PlansCleared() error
}

// Noop is the Notifier used when no channel is configured.
type Noop struct{}

func (Noop) PlanSaved(mealplan.SavedPlan) error { return nil }
func (Noop) PlansCleared() error                { return nil }

// Telegram sends plan events to a fixed chat.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	return &Telegram{api: bot, chatID: chatID}, nil
}

// PlanSaved announces a newly saved weekly plan.
func (t *Telegram) PlanSaved(plan mealplan.SavedPlan) error {
	_, err := t.api.Send(tgbotapi.NewMessage(t.chatID, planSavedMessage(plan)))
	return err
}

// PlansCleared announces that the plan collection was emptied.
func (t *Telegram) PlansCleared() error {
	_, err := t.api.Send(tgbotapi.NewMessage(t.chatID, "All saved meal plans were cleared."))
	return err
}

func planSavedMessage(plan mealplan.SavedPlan) string {
	return fmt.Sprintf("Meal plan saved: %s (%s to %s, %d days)",
		plan.Name, plan.StartDate, plan.EndDate, len(plan.MealPlan))
}
