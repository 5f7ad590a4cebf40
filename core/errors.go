package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	GatewayErrorBadInput             = "USEROPS_BAD_INPUT"
	GatewayErrorNotFound             = "USEROPS_NOT_FOUND"
	GatewayErrorKeyNotActivated      = "USEROPS_KEY_NOT_ACTIVATED"
	GatewayErrorTransientLedger      = "USEROPS_TRANSIENT_LEDGER_FAILURE"
	GatewayErrorDecodeFailure        = "USEROPS_DECODE_FAILURE"
	GatewayErrorReplacementsExceeded = "USEROPS_REPLACEMENTS_EXCEEDED"
	GatewayErrorRateLimited          = "USEROPS_RATE_LIMITED"
	GatewayErrorIOFailure            = "USEROPS_IO_FAILURE"
	GatewayErrorInternal             = "USEROPS_INTERNAL_ERROR"
)

func gatewayErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureGatewayErrorEnvelope(richErr)
	}

	switch {
	case errors.Is(err, ErrAPIKeyNotFound), errors.Is(err, ErrUserNotFound):
		return newGatewayError(err.Error(), goerrors.CategoryNotFound, GatewayErrorNotFound)
	case errors.Is(err, ErrAPIKeyNotActivated):
		return newGatewayError(err.Error(), goerrors.CategoryNotFound, GatewayErrorKeyNotActivated)
	case errors.Is(err, ErrNotHexString), errors.Is(err, ErrNotHexAddress),
		errors.Is(err, ErrInvalidCredentialStatusTransition):
		return newGatewayError(err.Error(), goerrors.CategoryBadInput, GatewayErrorBadInput)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "write") && strings.Contains(msg, "store"):
		return newGatewayError(err.Error(), goerrors.CategoryInternal, GatewayErrorIOFailure)
	case strings.Contains(msg, "throttl"), strings.Contains(msg, "rate limit"):
		return newGatewayError(err.Error(), goerrors.CategoryRateLimit, GatewayErrorRateLimited)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return newGatewayError(err.Error(), goerrors.CategoryBadInput, GatewayErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureGatewayErrorEnvelope(mapped)
}

func newGatewayError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureGatewayErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureGatewayErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = gatewayHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultGatewayTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultGatewayTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return GatewayErrorBadInput
	case goerrors.CategoryNotFound:
		return GatewayErrorNotFound
	case goerrors.CategoryRateLimit:
		return GatewayErrorRateLimited
	case goerrors.CategoryExternal:
		return GatewayErrorTransientLedger
	default:
		return GatewayErrorInternal
	}
}

func gatewayHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
