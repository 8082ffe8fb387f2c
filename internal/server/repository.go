package server

import (
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrDuplicateWeek is returned when a user already has a plan for the
// target week.
var ErrDuplicateWeek = errors.New("duplicate week")

// PlanRepository is the database access layer for meal plans.
type PlanRepository struct {
	database *gorm.DB
}

// NewPlanRepository creates a PlanRepository.
func NewPlanRepository(database *gorm.DB) *PlanRepository {
	return &PlanRepository{database: database}
}

// ListByUser returns the user's plans, newest first.
func (repo *PlanRepository) ListByUser(userID string) ([]PlanRecord, error) {
	records := make([]PlanRecord, 0)
	err := repo.database.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Create inserts a new plan record, mapping unique violations on the
// user/week index to ErrDuplicateWeek.
func (repo *PlanRepository) Create(record *PlanRecord) error {
	err := repo.database.Create(record).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateWeek
	}
	return err
}

// UpdateEntries replaces the entry list of one of the user's plans and
// returns the number of affected rows (0 when the id is unknown).
func (repo *PlanRepository) UpdateEntries(userID, id string, entries datatypes.JSON, updatedAt time.Time) (int64, error) {
	result := repo.database.Model(&PlanRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"entries":    entries,
			"updated_at": updatedAt,
		})
	return result.RowsAffected, result.Error
}

// Delete removes one of the user's plans by id.
func (repo *PlanRepository) Delete(userID, id string) (int64, error) {
	result := repo.database.
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&PlanRecord{})
	return result.RowsAffected, result.Error
}

// ClearByUser removes the user's entire plan collection.
func (repo *PlanRepository) ClearByUser(userID string) error {
	return repo.database.
		Where("user_id = ?", userID).
		Delete(&PlanRecord{}).Error
}
