package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"studydeck/internal/app"
	"studydeck/internal/transport/http/middleware"
	"studydeck/internal/transport/http/response"
)

// writeError maps a service error to status, code and category. Internal
// details of external and persistence failures are logged, not returned.
func writeError(c *gin.Context, err error) {
	category := app.CategoryOf(err)
	switch category {
	case app.CategoryNotFound:
		response.Fail(c, http.StatusNotFound, response.CodeSessionNotFound, string(category), err.Error())
	case app.CategoryClient:
		code := response.CodeBadRequest
		switch {
		case errors.Is(err, app.ErrNoFiles):
			code = response.CodeNoFiles
		case errors.Is(err, app.ErrPromptOrSession):
			code = response.CodePromptOrSession
		}
		response.Fail(c, http.StatusBadRequest, code, string(category), err.Error())
	case app.CategoryExternal:
		middleware.Logger(c).Error("external service failed", "error", err)
		response.Fail(c, http.StatusBadGateway, response.CodeExternalService, string(category), app.ErrGeneration.Error())
	default:
		middleware.Logger(c).Error("persistence failed", "error", err)
		response.Fail(c, http.StatusInternalServerError, response.CodePersistence, string(category), app.ErrPersistence.Error())
	}
}

func badRequest(c *gin.Context, message string) {
	response.Fail(c, http.StatusBadRequest, response.CodeBadRequest, string(app.CategoryClient), message)
}

// optionalUint parses a positive query parameter. Absent or empty yields nil.
func optionalUint(c *gin.Context, key string) (*uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return nil, false
	}
	u := uint(v)
	return &u, true
}

func optionalInt(c *gin.Context, key string) (*int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func requiredSessionID(c *gin.Context) (uint, bool) {
	id, ok := optionalUint(c, "session_id")
	if !ok || id == nil {
		badRequest(c, "invalid session_id")
		return 0, false
	}
	return *id, true
}
