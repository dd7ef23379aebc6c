package services

import (
	"fmt"
	"net/http"
)

// ConfigError is a deployment problem, e.g. a missing provider credential.
type ConfigError struct{ Message string }

func (e *ConfigError) Error() string { return e.Message }

// UpstreamError is a non-2xx reply from the completion provider.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("Together AI error: %d %s - %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }
