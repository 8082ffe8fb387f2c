package mealplan

import (
	"fmt"
	"time"
)

// Weekday names accepted in an Entry, in calendar order.
var Weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Entry represents one calendar day inside a weekly plan: the four meal
// slots plus the optional ingredient lists and nutrition details that
// health-aware generation attaches per slot.
type Entry struct {
	Day       string `json:"day"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Snack     string `json:"snack,omitempty"`

	BreakfastIngredients []string `json:"breakfast_ingredients,omitempty"`
	LunchIngredients     []string `json:"lunch_ingredients,omitempty"`
	DinnerIngredients    []string `json:"dinner_ingredients,omitempty"`
	SnackIngredients     []string `json:"snack_ingredients,omitempty"`

	BreakfastName     string  `json:"breakfast_name,omitempty"`
	BreakfastCalories float64 `json:"breakfast_calories,omitempty"`
	BreakfastProtein  float64 `json:"breakfast_protein,omitempty"`
	BreakfastCarbs    float64 `json:"breakfast_carbs,omitempty"`
	BreakfastFat      float64 `json:"breakfast_fat,omitempty"`
	BreakfastBenefit  string  `json:"breakfast_benefit,omitempty"`

	LunchName     string  `json:"lunch_name,omitempty"`
	LunchCalories float64 `json:"lunch_calories,omitempty"`
	LunchProtein  float64 `json:"lunch_protein,omitempty"`
	LunchCarbs    float64 `json:"lunch_carbs,omitempty"`
	LunchFat      float64 `json:"lunch_fat,omitempty"`
	LunchBenefit  string  `json:"lunch_benefit,omitempty"`

	DinnerName     string  `json:"dinner_name,omitempty"`
	DinnerCalories float64 `json:"dinner_calories,omitempty"`
	DinnerProtein  float64 `json:"dinner_protein,omitempty"`
	DinnerCarbs    float64 `json:"dinner_carbs,omitempty"`
	DinnerFat      float64 `json:"dinner_fat,omitempty"`
	DinnerBenefit  string  `json:"dinner_benefit,omitempty"`

	SnackName     string  `json:"snack_name,omitempty"`
	SnackCalories float64 `json:"snack_calories,omitempty"`
	SnackProtein  float64 `json:"snack_protein,omitempty"`
	SnackCarbs    float64 `json:"snack_carbs,omitempty"`
	SnackFat      float64 `json:"snack_fat,omitempty"`
	SnackBenefit  string  `json:"snack_benefit,omitempty"`
}

// HealthAssessment is the computed block attached to plans generated
// through the health-aware path.
type HealthAssessment struct {
	WaistToHeightRatio float64 `json:"waist_to_height_ratio"`
	RatioCategory      string  `json:"ratio_category"`
	BMR                float64 `json:"bmr"`
	DailyCalorieTarget float64 `json:"daily_calorie_target"`
}

// UserInfo is a snapshot of the health profile a plan was generated
// from. It is frozen at creation time.
type UserInfo struct {
	Age       int     `json:"age"`
	Gender    string  `json:"gender"`
	Height    float64 `json:"height"`
	Weight    float64 `json:"weight"`
	Condition string  `json:"condition,omitempty"`
	Goal      string  `json:"goal,omitempty"`
}

// SavedPlan is one persisted weekly meal schedule. EndDate is always
// StartDate + 6 days, and the server enforces one plan per user per
// week keyed on StartDate.
type SavedPlan struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	StartDate        string            `json:"start_date"`
	EndDate          string            `json:"end_date"`
	MealPlan         []Entry           `json:"meal_plan"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	HealthAssessment *HealthAssessment `json:"health_assessment,omitempty"`
	UserInfo         *UserInfo         `json:"user_info,omitempty"`
	HasSickness      bool              `json:"has_sickness"`
	SicknessType     string            `json:"sickness_type,omitempty"`
}

// ValidateEntries checks that every entry names a real weekday. The
// seven-unique-days constraint is deliberately left to the server.
func ValidateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("meal plan has no entries")
	}
	for i, e := range entries {
		if !validWeekday(e.Day) {
			return fmt.Errorf("entry %d: invalid weekday %q", i, e.Day)
		}
	}
	return nil
}

func validWeekday(day string) bool {
	for _, w := range Weekdays {
		if w == day {
			return true
		}
	}
	return false
}
