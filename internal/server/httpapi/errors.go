package httpapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/you-kimono/checkilists/internal/common"
	"github.com/you-kimono/checkilists/internal/logging"
)

// errorHandler turns service errors into status codes with a {"detail": ...}
// body. Unclassified errors become a bare 500; their text stays in the log.
func errorHandler(logger logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, detail := classify(err)

		switch status {
		case fiber.StatusUnauthorized:
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		case fiber.StatusInternalServerError:
			logger.Error(c.UserContext(), "request failed",
				"method", c.Method(), "path", c.Path(), "error", err)
		}

		return c.Status(status).JSON(errorResponse{Detail: detail})
	}
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, common.ErrDuplicateIdentity):
		return fiber.StatusConflict, common.ErrDuplicateIdentity.Error()
	case errors.Is(err, common.ErrLoginFailed):
		return fiber.StatusUnauthorized, common.ErrLoginFailed.Error()
	case errors.Is(err, common.ErrInvalidToken):
		return fiber.StatusUnauthorized, "could not validate credentials"
	case errors.Is(err, common.ErrUnknownAccount):
		return fiber.StatusNotFound, notFound("profile", err)
	case errors.Is(err, common.ErrUnknownChecklist):
		return fiber.StatusNotFound, notFound("checklist", err)
	case errors.Is(err, common.ErrUnknownStep):
		return fiber.StatusNotFound, notFound("step", err)
	case errors.Is(err, common.ErrorValidation):
		return fiber.StatusUnprocessableEntity, err.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

func notFound(kind string, err error) string {
	var le *common.LookupError
	if errors.As(err, &le) {
		if id, ok := strings.CutPrefix(le.Key, "id="); ok {
			return fmt.Sprintf("%s with id %s not found", kind, id)
		}
	}
	return kind + " not found"
}
