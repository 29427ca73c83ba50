package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/dairyadmin/pkg/errors"
	"github.com/charlesng35/dairyadmin/pkg/response"
	appValidator "github.com/charlesng35/dairyadmin/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, validationError(err))
		return false
	}

	return true
}

// validationError turns struct validation failures into a 422 carrying one message per field.
func validationError(err error) *appErrors.AppError {
	ve, ok := err.(appValidator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return appErrors.NewBadRequest("invalid request payload")
	}

	fields := make(map[string]string, len(ve))
	messages := make([]string, 0, len(ve))
	for _, failure := range ve {
		msg := fieldMessage(failure)
		if _, seen := fields[failure.Field]; !seen {
			fields[failure.Field] = msg
		}
		messages = append(messages, msg)
	}
	return appErrors.NewValidation(strings.Join(messages, "; "), fields)
}

func fieldMessage(failure appValidator.ValidationError) string {
	field := prettifyFieldName(failure.Field)
	switch failure.Tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, failure.Param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, failure.Param)
	case "gte":
		return fmt.Sprintf("%s must be %s or more", field, failure.Param)
	case "lte":
		return fmt.Sprintf("%s must be %s or less", field, failure.Param)
	case "ifsc":
		return fmt.Sprintf("%s must be a valid IFSC code", field)
	case "unitcode":
		return fmt.Sprintf("%s may only contain letters, digits, '-' and '_'", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, failure.Param)
	default:
		if failure.Param != "" {
			return fmt.Sprintf("%s failed validation: %s=%s", field, failure.Tag, failure.Param)
		}
		return fmt.Sprintf("%s failed validation: %s", field, failure.Tag)
	}
}

func prettifyFieldName(name string) string {
	if name == "" {
		return "field"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToLower(name)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// parseBoolQuery reads an optional status style flag. Unknown values are ignored.
func parseBoolQuery(c *gin.Context, key string) *bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(key))) {
	case "true", "1", "active", "yes":
		v := true
		return &v
	case "false", "0", "inactive", "no":
		v := false
		return &v
	default:
		return nil
	}
}

// parseUintQuery reads an optional positive id filter. Zero and invalid values are ignored.
func parseUintQuery(c *gin.Context, key string) *uint {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return nil
	}
	id := uint(parsed)
	return &id
}

// parseIDParam reads a positive numeric path parameter, writing a 400 when it is malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || parsed == 0 {
		response.Error(c, appErrors.NewBadRequest(fmt.Sprintf("invalid %s", name)))
		return 0, false
	}
	return uint(parsed), true
}
