package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"prospectcrm/store"
	"prospectcrm/utils"
)

// storeError maps a store failure to its HTTP status. Unexpected failures
// are logged and reported before answering 500.
func storeError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, message, err)
	case errors.Is(err, store.ErrConflict):
		return utils.ErrorResponse(c, fiber.StatusConflict, message, err)
	case errors.Is(err, store.ErrInvalidQuery), errors.Is(err, store.ErrInvalidInput):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, message, err)
	}
	utils.LogError("store_error", err, map[string]interface{}{
		"method": c.Method(),
		"path":   c.Path(),
	})
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, message, nil)
}

// parseBody decodes and validates the request body into dst. On failure it
// returns the message to answer with alongside the cause.
func parseBody(c *fiber.Ctx, dst interface{}) (string, error) {
	if err := c.BodyParser(dst); err != nil {
		return "Invalid request body", err
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return "Validation failed", err
	}
	return "", nil
}

var listParams = map[string]bool{
	"page":          true,
	"status":        true,
	"sortField":     true,
	"sortDirection": true,
}

// parseListQuery reads page, status and sort from the query string. Every
// other parameter is a filter, given either as field=value or filter[field]=value.
func parseListQuery(c *fiber.Ctx) (store.ListQuery, error) {
	var q store.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return q, store.InvalidInput("malformed query string")
	}

	q.Filters = make(map[string]string)
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if listParams[k] {
			return
		}
		if strings.HasPrefix(k, "filter[") && strings.HasSuffix(k, "]") {
			k = k[len("filter[") : len(k)-1]
		}
		q.Filters[k] = string(value)
	})
	return q, nil
}

// listResponse is the envelope of paginated listings.
func listResponse[T any](page store.Page[T]) fiber.Map {
	return fiber.Map{
		"success":    true,
		"data":       page.Data,
		"pagination": page.Pagination,
	}
}
