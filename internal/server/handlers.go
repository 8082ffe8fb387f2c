package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"mealsync/internal/auth"
)

const authCookieName = "mealsync_token"

// duplicateWeekMessage is the wire-contract error for the one-plan-per
// -week constraint. Clients match on "duplicate key value" plus
// "unique_user_week", so the message shape is storage-engine
// independent.
const duplicateWeekMessage = `duplicate key value violates unique constraint "unique_user_week"`

// Handler serves the meal-plan REST API.
type Handler struct {
	repo      *PlanRepository
	secretKey []byte
}

// NewHandler creates a Handler.
func NewHandler(repo *PlanRepository, secretKey []byte) *Handler {
	return &Handler{repo: repo, secretKey: secretKey}
}

// RegisterRoutes mounts the API routes. The clear route must precede
// the parameterized ones so "clear" is never captured as an id.
func (handler *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/api/meal_plan", handler.handleList)
	app.Post("/api/meal_plan", handler.handleCreate)
	app.Delete("/api/meal_plans/clear", handler.handleClear)
	app.Put("/api/meal_plans/:id", handler.handleUpdate)
	app.Delete("/api/meal_plans/:id", handler.handleDelete)
}

type planResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	MealPlan         json.RawMessage `json:"meal_plan"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	HealthAssessment json.RawMessage `json:"health_assessment,omitempty"`
	UserInfo         json.RawMessage `json:"user_info,omitempty"`
	HasSickness      bool            `json:"has_sickness"`
	SicknessType     string          `json:"sickness_type,omitempty"`
}

// createdPlanResponse mirrors planResponse with the camelCase keys the
// create endpoint has always answered with.
type createdPlanResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	StartDate        string          `json:"startDate"`
	EndDate          string          `json:"endDate"`
	MealPlan         json.RawMessage `json:"mealPlan"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	HealthAssessment json.RawMessage `json:"healthAssessment,omitempty"`
	UserInfo         json.RawMessage `json:"userInfo,omitempty"`
	HasSickness      bool            `json:"hasSickness"`
	SicknessType     string          `json:"sicknessType,omitempty"`
}

type createPlanInput struct {
	Name             string          `json:"name"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	MealPlan         json.RawMessage `json:"meal_plan"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	HealthAssessment json.RawMessage `json:"health_assessment"`
	UserInfo         json.RawMessage `json:"user_info"`
	HasSickness      bool            `json:"has_sickness"`
	SicknessType     string          `json:"sickness_type"`
}

type updatePlanInput struct {
	MealPlan  json.RawMessage `json:"meal_plan"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (handler *Handler) handleList(c *fiber.Ctx) error {
	userID, err := handler.requireUser(c)
	if err != nil {
		return unauthorized(c)
	}

	records, err := handler.repo.ListByUser(userID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to load meal plans")
	}

	plans := make([]planResponse, 0, len(records))
	for _, record := range records {
		plans = append(plans, planResponse{
			ID:               record.ID,
			Name:             record.Name,
			StartDate:        record.StartDate,
			EndDate:          record.EndDate,
			MealPlan:         json.RawMessage(record.Entries),
			CreatedAt:        record.CreatedAt,
			UpdatedAt:        record.UpdatedAt,
			HealthAssessment: json.RawMessage(record.HealthAssessment),
			UserInfo:         json.RawMessage(record.UserInfo),
			HasSickness:      record.HasSickness,
			SicknessType:     record.SicknessType,
		})
	}

	return c.JSON(fiber.Map{
		"status":     "success",
		"meal_plans": plans,
	})
}

func (handler *Handler) handleCreate(c *fiber.Ctx) error {
	userID, err := handler.requireUser(c)
	if err != nil {
		return unauthorized(c)
	}

	var input createPlanInput
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if input.Name == "" || input.StartDate == "" || input.EndDate == "" || len(input.MealPlan) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "name, start_date, end_date and meal_plan are required")
	}

	now := time.Now().UTC()
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := input.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	record := PlanRecord{
		ID:               uuid.NewString(),
		UserID:           userID,
		Name:             input.Name,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		Entries:          datatypes.JSON(input.MealPlan),
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
		HealthAssessment: datatypes.JSON(input.HealthAssessment),
		UserInfo:         datatypes.JSON(input.UserInfo),
		HasSickness:      input.HasSickness,
		SicknessType:     input.SicknessType,
	}

	if err := handler.repo.Create(&record); err != nil {
		if errors.Is(err, ErrDuplicateWeek) {
			return jsonError(c, fiber.StatusConflict, duplicateWeekMessage)
		}
		return jsonError(c, fiber.StatusInternalServerError, "Failed to save meal plan")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data": createdPlanResponse{
			ID:               record.ID,
			Name:             record.Name,
			StartDate:        record.StartDate,
			EndDate:          record.EndDate,
			MealPlan:         json.RawMessage(record.Entries),
			CreatedAt:        record.CreatedAt,
			UpdatedAt:        record.UpdatedAt,
			HealthAssessment: json.RawMessage(record.HealthAssessment),
			UserInfo:         json.RawMessage(record.UserInfo),
			HasSickness:      record.HasSickness,
			SicknessType:     record.SicknessType,
		},
	})
}

func (handler *Handler) handleUpdate(c *fiber.Ctx) error {
	userID, err := handler.requireUser(c)
	if err != nil {
		return unauthorized(c)
	}

	var input updatePlanInput
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(input.MealPlan) == 0 {
		return jsonError(c, fiber.StatusBadRequest, "meal_plan is required")
	}

	updatedAt := input.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	affected, err := handler.repo.UpdateEntries(userID, c.Params("id"), datatypes.JSON(input.MealPlan), updatedAt)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to update meal plan")
	}
	if affected == 0 {
		return jsonError(c, fiber.StatusNotFound, "meal plan not found")
	}

	return c.JSON(fiber.Map{"status": "success"})
}

func (handler *Handler) handleDelete(c *fiber.Ctx) error {
	userID, err := handler.requireUser(c)
	if err != nil {
		return unauthorized(c)
	}

	affected, err := handler.repo.Delete(userID, c.Params("id"))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to delete meal plan")
	}
	if affected == 0 {
		return jsonError(c, fiber.StatusNotFound, "meal plan not found")
	}

	return c.JSON(fiber.Map{"status": "success"})
}

func (handler *Handler) handleClear(c *fiber.Ctx) error {
	userID, err := handler.requireUser(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := handler.repo.ClearByUser(userID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "Failed to clear meal plans")
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// requireUser extracts and verifies the caller identity from the
// bearer header, falling back to the auth cookie.
func (handler *Handler) requireUser(c *fiber.Ctx) (string, error) {
	rawToken := ""
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if strings.HasPrefix(header, "Bearer ") {
		rawToken = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if rawToken == "" {
		rawToken = strings.TrimSpace(c.Cookies(authCookieName))
	}
	if rawToken == "" {
		return "", errors.New("missing credentials")
	}

	claims := &auth.Claims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		return "", errors.New("token expired")
	}
	if claims.UserID == "" {
		return "", errors.New("token has no user id")
	}

	return claims.UserID, nil
}

func jsonError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
}
