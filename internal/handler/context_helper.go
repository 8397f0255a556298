package handler

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/OB-39/Marathon-Chalenge-sub000/internal/middleware"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/models"
	"github.com/OB-39/Marathon-Chalenge-sub000/internal/service"
	appErrors "github.com/OB-39/Marathon-Chalenge-sub000/pkg/errors"
	"github.com/OB-39/Marathon-Chalenge-sub000/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

// requireClaims writes a 401 and returns nil when the request is anonymous.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}

func parseQueryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func dayParam(c *gin.Context) (int, bool) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day must be a positive integer"))
		return 0, false
	}
	return day, true
}

// idParam reads a UUID path parameter and writes a 400 when it is malformed,
// so bad identifiers never reach the store.
func idParam(c *gin.Context, key string) (string, bool) {
	id, err := uuid.Parse(c.Param(key))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, key+" must be a valid UUID"))
		return "", false
	}
	return id.String(), true
}

// formUpload opens the multipart file under field. The caller closes the returned closer.
func formUpload(c *gin.Context, field string) (service.Upload, io.Closer, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return service.Upload{}, nil, false
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return service.Upload{}, nil, false
	}
	return service.Upload{Filename: fileHeader.Filename, Size: fileHeader.Size, Body: src}, src, true
}
