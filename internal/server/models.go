package server

import (
	"time"

	"gorm.io/datatypes"
)

// PlanRecord is the persisted form of a weekly meal plan. The entry
// list and the optional health blocks are stored as JSON documents;
// the composite unique_user_week index enforces one plan per user per
// week, keyed on the derived start date.
type PlanRecord struct {
	ID               string `gorm:"primaryKey"`
	UserID           string `gorm:"column:user_id;index:unique_user_week,unique;not null"`
	StartDate        string `gorm:"column:start_date;index:unique_user_week,unique;not null"`
	Name             string `gorm:"not null"`
	EndDate          string `gorm:"column:end_date;not null"`
	Entries          datatypes.JSON
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
	HealthAssessment datatypes.JSON
	UserInfo         datatypes.JSON
	HasSickness      bool
	SicknessType     string
}

// TableName keeps the table name aligned with the API path.
func (PlanRecord) TableName() string {
	return "meal_plans"
}
