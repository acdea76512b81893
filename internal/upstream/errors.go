package upstream

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nebula-retail/storefront/internal/common"
)

// MapError converts client errors into AppErrors matching the storefront's
// failure taxonomy: missing configuration, connection failure, upstream
// status, not found. Unrecognised errors pass through untouched.
func MapError(err error, service string) error {
	if err == nil {
		return nil
	}
	var statusErr *StatusError
	switch {
	case errors.Is(err, ErrNotConfigured):
		return common.NewAppError(
			common.CodeConfigMissing,
			fmt.Sprintf("%s service URL is not configured", service),
			http.StatusServiceUnavailable, err)
	case errors.Is(err, ErrNotFound):
		return common.NewAppError(
			common.CodeNotFound,
			fmt.Sprintf("%s resource not found", service),
			http.StatusNotFound, err)
	case errors.As(err, &statusErr):
		return &common.AppError{
			Code:       common.CodeUpstream,
			Message:    statusErr.Error(),
			HTTPStatus: http.StatusBadGateway,
			Err:        err,
			Details:    map[string]any{"status": statusErr.Code},
		}
	case errors.Is(err, ErrUnreachable):
		return common.NewAppError(
			common.CodeUnreachable,
			fmt.Sprintf("failed to connect to the %s service", service),
			http.StatusBadGateway, err)
	}
	return err
}
