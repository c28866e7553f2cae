package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/casting-service/pkg/util"
)

// parseID reads the :id route parameter. Anything that is not a positive
// integer cannot name a row, so it is reported as not found.
func parseID(c *fiber.Ctx, resource string) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound(resource, raw)
	}
	return id, nil
}

// parseBody decodes the JSON body into out. An empty body decodes to the zero
// value when allowEmpty is set.
func parseBody(c *fiber.Ctx, out any, allowEmpty bool) error {
	if allowEmpty && len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewUnprocessable(map[string]any{"body": "invalid json"}, err)
	}
	return nil
}
