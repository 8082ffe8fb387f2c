package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"mealsync/internal/mealplan"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// TokenSource supplies the current bearer token, or "" when none is
// available yet. Requests without a token still go out with the cookie
// jar as a fallback credential.
type TokenSource interface {
	Token() string
}

// Client is an interface for the meal-plan backend API.
type Client interface {
	ListPlans(ctx context.Context) ([]mealplan.SavedPlan, error)
	CreatePlan(ctx context.Context, plan mealplan.SavedPlan) (mealplan.SavedPlan, error)
	UpdatePlan(ctx context.Context, id string, entries []mealplan.Entry, updatedAt time.Time) error
	DeletePlan(ctx context.Context, id string) error
	ClearPlans(ctx context.Context) error
}

// httpClient is the concrete HTTP implementation of Client.
type httpClient struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

// NewClient creates a meal-plan API client for the given base URL.
func NewClient(baseURL string, tokens TokenSource) Client {
	jar, _ := cookiejar.New(nil)
	return &httpClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
		tokens: tokens,
	}
}

// envelope is the common response wrapper used by every endpoint.
type envelope struct {
	Status    string               `json:"status"`
	Message   string               `json:"message"`
	MealPlans []mealplan.SavedPlan `json:"meal_plans"`
	Data      *planData            `json:"data"`
}

// planData is the created-plan payload; the backend echoes it with
// camelCase top-level keys, unlike the snake_case listing records.
type planData struct {
	ID               string                     `json:"id"`
	Name             string                     `json:"name"`
	StartDate        string                     `json:"startDate"`
	EndDate          string                     `json:"endDate"`
	MealPlan         []mealplan.Entry           `json:"mealPlan"`
	CreatedAt        time.Time                  `json:"createdAt"`
	UpdatedAt        time.Time                  `json:"updatedAt"`
	HealthAssessment *mealplan.HealthAssessment `json:"healthAssessment"`
	UserInfo         *mealplan.UserInfo         `json:"userInfo"`
	HasSickness      bool                       `json:"hasSickness"`
	SicknessType     string                     `json:"sicknessType"`
}

func (d *planData) toPlan() mealplan.SavedPlan {
	return mealplan.SavedPlan{
		ID:               d.ID,
		Name:             d.Name,
		StartDate:        d.StartDate,
		EndDate:          d.EndDate,
		MealPlan:         d.MealPlan,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		HealthAssessment: d.HealthAssessment,
		UserInfo:         d.UserInfo,
		HasSickness:      d.HasSickness,
		SicknessType:     d.SicknessType,
	}
}

// ListPlans fetches the caller's full plan collection, newest first.
func (c *httpClient) ListPlans(ctx context.Context) ([]mealplan.SavedPlan, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/meal_plan", nil, "Failed to load meal plans")
	if err != nil {
		return nil, err
	}
	return env.MealPlans, nil
}

// CreatePlan persists a new weekly plan and returns the server-assigned
// record.
func (c *httpClient) CreatePlan(ctx context.Context, plan mealplan.SavedPlan) (mealplan.SavedPlan, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/meal_plan", plan, "Failed to save meal plan")
	if err != nil {
		return mealplan.SavedPlan{}, err
	}
	if env.Data == nil {
		return mealplan.SavedPlan{}, &Error{Code: CodeAPI, Message: "Failed to save meal plan"}
	}
	return env.Data.toPlan(), nil
}

// updatePayload carries only the mutable fields of a plan.
type updatePayload struct {
	MealPlan  []mealplan.Entry `json:"meal_plan"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// UpdatePlan replaces the entry list of an existing plan.
func (c *httpClient) UpdatePlan(ctx context.Context, id string, entries []mealplan.Entry, updatedAt time.Time) error {
	body := updatePayload{MealPlan: entries, UpdatedAt: updatedAt}
	_, err := c.do(ctx, http.MethodPut, "/api/meal_plans/"+id, body, "Failed to update meal plan")
	return err
}

// DeletePlan removes one plan by id.
func (c *httpClient) DeletePlan(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/meal_plans/"+id, nil, "Failed to delete meal plan")
	return err
}

// ClearPlans removes the caller's entire plan collection.
func (c *httpClient) ClearPlans(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/meal_plans/clear", nil, "Failed to clear meal plans")
	return err
}

func (c *httpClient) do(ctx context.Context, method, path string, body interface{}, fallback string) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Code: CodeTransport, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr != nil || env.Message == "" {
			return nil, transportError(resp.StatusCode)
		}
		return nil, &Error{
			Code:       classify(resp.StatusCode, env.Message),
			Message:    env.Message,
			HTTPStatus: resp.StatusCode,
		}
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	if env.Status == statusError {
		message := env.Message
		if message == "" {
			message = fallback
		}
		return nil, &Error{
			Code:       classify(resp.StatusCode, env.Message),
			Message:    message,
			HTTPStatus: resp.StatusCode,
		}
	}

	return &env, nil
}
