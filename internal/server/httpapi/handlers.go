// Package httpapi is the REST transport of the checklists server. Handlers
// parse requests, call the session façade and render its results; all
// authorization decisions are made behind the façade.
package httpapi

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/you-kimono/checkilists/internal/logging"
	"github.com/you-kimono/checkilists/internal/server/models"
	"github.com/you-kimono/checkilists/internal/server/services"
)

// Session is the façade the handlers call.
type Session interface {
	Register(ctx context.Context, email, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	GetProfile(ctx context.Context, token string, id int64) (*models.Account, error)
	DeleteProfile(ctx context.Context, token string, id int64) error

	CreateChecklist(ctx context.Context, token string, in services.ChecklistFields) (*models.Checklist, error)
	GetChecklist(ctx context.Context, token string, id int64) (*models.Checklist, error)
	ListChecklists(ctx context.Context, token string) ([]*models.Checklist, error)
	UpdateChecklist(ctx context.Context, token string, id int64, in services.ChecklistChange) (*models.Checklist, error)
	DeleteChecklist(ctx context.Context, token string, id int64) error
	ExportChecklist(ctx context.Context, token string, id int64) (*services.Export, error)

	CreateStep(ctx context.Context, token string, checklistID int64, in services.StepFields) (*models.Step, error)
	GetStep(ctx context.Context, token string, checklistID, stepID int64) (*models.Step, error)
	ListSteps(ctx context.Context, token string, checklistID int64) ([]*models.Step, error)
	UpdateStep(ctx context.Context, token string, checklistID int64, change services.StepChange) (*models.Step, error)
	DeleteStep(ctx context.Context, token string, checklistID, stepID int64) error
}

type Handler struct {
	session Session
}

// NewApp builds the fiber application with every route registered.
func NewApp(session Session, logger logging.Logger) *fiber.App {
	logger = logger.With("module", "http")

	app := fiber.New(fiber.Config{
		AppName:               "checklists",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})
	app.Use(accessLog(logger))

	SetupRoutes(app, &Handler{session: session})
	return app
}

func SetupRoutes(app *fiber.App, h *Handler) {
	app.Get("/ping", h.Ping)
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)

	profiles := app.Group("/profiles", bearerToken())
	profiles.Get("/:id", h.GetProfile)
	profiles.Delete("/:id", h.DeleteProfile)

	checklists := app.Group("/checklists", bearerToken())
	checklists.Get("/", h.ListChecklists)
	checklists.Post("/", h.CreateChecklist)
	checklists.Get("/:id", h.GetChecklist)
	checklists.Put("/:id", h.UpdateChecklist)
	checklists.Delete("/:id", h.DeleteChecklist)
	checklists.Post("/:id/export", h.ExportChecklist)

	checklists.Get("/:id/steps", h.ListSteps)
	checklists.Post("/:id/steps", h.CreateStep)
	checklists.Get("/:id/steps/:stepId", h.GetStep)
	checklists.Put("/:id/steps/:stepId", h.UpdateStep)
	checklists.Delete("/:id/steps/:stepId", h.DeleteStep)
}

func (h *Handler) Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ping": "pong"})
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "failed to parse request body")
	}

	account, err := h.session.Register(c.UserContext(), req.login(), req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(accountResponse{ID: account.ID, Email: account.Email})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "failed to parse request body")
	}
	if req.login() == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "username and password are required")
	}

	pair, err := h.session.Login(c.UserContext(), req.login(), req.Password)
	if err != nil {
		return err
	}

	return c.JSON(tokenResponse{AccessToken: pair.AccessToken, TokenType: pair.TokenType})
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	account, err := h.session.GetProfile(c.UserContext(), token(c), id)
	if err != nil {
		return err
	}

	return c.JSON(accountResponse{ID: account.ID, Email: account.Email})
}

func (h *Handler) DeleteProfile(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.session.DeleteProfile(c.UserContext(), token(c), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusAccepted)
}

func (h *Handler) ListChecklists(c *fiber.Ctx) error {
	list, err := h.session.ListChecklists(c.UserContext(), token(c))
	if err != nil {
		return err
	}

	out := make([]checklistResponse, 0, len(list))
	for _, cl := range list {
		out = append(out, toChecklist(cl))
	}
	return c.JSON(out)
}

func (h *Handler) CreateChecklist(c *fiber.Ctx) error {
	var req checklistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "failed to parse request body")
	}

	cl, err := h.session.CreateChecklist(c.UserContext(), token(c), services.ChecklistFields{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toChecklist(cl))
}

func (h *Handler) GetChecklist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	cl, err := h.session.GetChecklist(c.UserContext(), token(c), id)
	if err != nil {
		return err
	}

	return c.JSON(toChecklist(cl))
}

func (h *Handler) UpdateChecklist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req checklistRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "failed to parse request body")
	}

	change := services.ChecklistChange{
		ChecklistFields: services.ChecklistFields{Title: req.Title, Description: req.Description},
	}
	for _, st := range req.Steps {
		change.Steps = append(change.Steps, services.StepChange{ID: st.ID, StepFields: st.fields()})
	}

	cl, err := h.session.UpdateChecklist(c.UserContext(), token(c), id, change)
	if err != nil {
		return err
	}

	return c.JSON(toChecklist(cl))
}

func (h *Handler) DeleteChecklist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	if err := h.session.DeleteChecklist(c.UserContext(), token(c), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ExportChecklist(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	exp, err := h.session.ExportChecklist(c.UserContext(), token(c), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(exportResponse{Key: exp.Key, URL: exp.URL, ExpiresAt: exp.ExpiresAt})
}

func (h *Handler) ListSteps(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	list, err := h.session.ListSteps(c.UserContext(), token(c), id)
	if err != nil {
		return err
	}

	return c.JSON(toSteps(list))
}

func (h *Handler) CreateStep(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req stepRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "failed to parse request body")
	}

	st, err := h.session.CreateStep(c.UserContext(), token(c), id, req.fields())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toStep(st))
}

func (h *Handler) GetStep(c *fiber.Ctx) error {
	id, stepID, err := stepParams(c)
	if err != nil {
		return err
	}

	st, err := h.session.GetStep(c.UserContext(), token(c), id, stepID)
	if err != nil {
		return err
	}

	return c.JSON(toStep(st))
}

func (h *Handler) UpdateStep(c *fiber.Ctx) error {
	id, stepID, err := stepParams(c)
	if err != nil {
		return err
	}

	var req stepRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "failed to parse request body")
	}

	st, err := h.session.UpdateStep(c.UserContext(), token(c), id, services.StepChange{ID: stepID, StepFields: req.fields()})
	if err != nil {
		return err
	}

	return c.JSON(toStep(st))
}

func (h *Handler) DeleteStep(c *fiber.Ctx) error {
	id, stepID, err := stepParams(c)
	if err != nil {
		return err
	}

	if err := h.session.DeleteStep(c.UserContext(), token(c), id, stepID); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnprocessableEntity, name+" must be an integer")
	}
	return id, nil
}

func stepParams(c *fiber.Ctx) (int64, int64, error) {
	id, err := paramID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	stepID, err := paramID(c, "stepId")
	if err != nil {
		return 0, 0, err
	}
	return id, stepID, nil
}
