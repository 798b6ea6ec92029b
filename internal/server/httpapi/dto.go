package httpapi

import (
	"time"

	"github.com/you-kimono/checkilists/internal/server/models"
	"github.com/you-kimono/checkilists/internal/server/services"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// login accepts the OAuth2 password form, where the email travels as "username".
func (r credentialsRequest) login() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

type accountResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type checklistRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Steps       []stepChangeRequest `json:"steps"`
}

type stepRequest struct {
	Text        string `json:"text"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	Completed   bool   `json:"completed"`
}

func (r stepRequest) fields() services.StepFields {
	return services.StepFields{Text: r.Text, Description: r.Description, Order: r.Order, Completed: r.Completed}
}

type stepChangeRequest struct {
	ID int64 `json:"id"`
	stepRequest
}

type stepResponse struct {
	ID          int64     `json:"id"`
	ChecklistID int64     `json:"checklist_id"`
	Text        string    `json:"text"`
	Description string    `json:"description"`
	Order       int       `json:"order"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type checklistResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	OwnerID     int64          `json:"owner_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Steps       []stepResponse `json:"steps"`
}

type exportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toStep(s *models.Step) stepResponse {
	return stepResponse{
		ID:          s.ID,
		ChecklistID: s.ChecklistID,
		Text:        s.Text,
		Description: s.Description,
		Order:       s.Order,
		Completed:   s.Completed,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toSteps(list []*models.Step) []stepResponse {
	out := make([]stepResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toStep(s))
	}
	return out
}

func toChecklist(c *models.Checklist) checklistResponse {
	steps := make([]stepResponse, 0, len(c.Steps))
	for i := range c.Steps {
		steps = append(steps, toStep(&c.Steps[i]))
	}
	return checklistResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		OwnerID:     c.OwnerID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Steps:       steps,
	}
}
