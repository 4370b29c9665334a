// Package handlers implements the gin handlers of the molprint HTTP API.
package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/internal/interfaces/http/middleware"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/types/common"
)

// statusClientClosed is reported when the caller went away mid-request.
const statusClientClosed = 499

// respondOK writes data in a success envelope.
func respondOK[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, common.NewSuccessResponse(data, middleware.RequestIDFrom(c)))
}

// respondError maps err to a status code and an error envelope. Internal
// errors are logged and masked.
func respondError(c *gin.Context, logger logging.Logger, err error) {
	status, code, message, details := describeError(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.String("path", c.FullPath()),
			logging.String("request_id", middleware.RequestIDFrom(c)),
			logging.Err(err))
	} else {
		logger.Debug("request rejected",
			logging.String("path", c.FullPath()),
			logging.String("code", code.String()),
			logging.Err(err))
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, common.NewErrorResponse(code.String(), message, middleware.RequestIDFrom(c), details))
}

// bindError turns a ShouldBind failure into an application error.
func bindError(err error) error {
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return errors.New(errors.ErrCodePayloadTooLarge, errors.DefaultMessageForCode(errors.ErrCodePayloadTooLarge)).
			WithCause(err)
	}
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+" failed "+fe.Tag())
		}
		return errors.InvalidParam("invalid request body").WithDetail(strings.Join(fields, "; ")).WithCause(err)
	}
	return errors.InvalidParam("malformed request body").WithDetail(err.Error()).WithCause(err)
}

func describeError(err error) (status int, code errors.ErrorCode, message string, details map[string]interface{}) {
	if stderrors.Is(err, context.Canceled) {
		return statusClientClosed, errors.ErrCodeCanceled, errors.DefaultMessageForCode(errors.ErrCodeCanceled), nil
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errors.ErrCodeTimeout, errors.DefaultMessageForCode(errors.ErrCodeTimeout), nil
	}

	var (
		cfgErr     *errors.ConfigurationError
		parseErr   *errors.MoleculeParseError
		computeErr *errors.FingerprintComputationError
		appErr     *errors.AppError
	)
	switch {
	case errors.As(err, &cfgErr):
		code = cfgErr.ErrorCode()
		return errors.HTTPStatusForCode(code), code, cfgErr.Error(), map[string]interface{}{
			"params":     cfgErr.Params,
			"constraint": cfgErr.Constraint,
			"values":     cfgErr.Values,
		}
	case errors.As(err, &parseErr):
		code = parseErr.ErrorCode()
		return errors.HTTPStatusForCode(code), code, parseErr.Error(), map[string]interface{}{
			"index": parseErr.Index,
		}
	case errors.As(err, &computeErr):
		code = computeErr.ErrorCode()
		return errors.HTTPStatusForCode(code), code, computeErr.Error(), map[string]interface{}{
			"index":       computeErr.Index,
			"fingerprint": computeErr.Fingerprint,
		}
	case errors.As(err, &appErr):
		code = appErr.Code
		status = errors.HTTPStatusForCode(code)
		if status >= http.StatusInternalServerError {
			return status, code, errors.DefaultMessageForCode(code), nil
		}
		message = appErr.Message
		if appErr.Detail != "" {
			message += ": " + appErr.Detail
		}
		return status, code, message, nil
	}
	return http.StatusInternalServerError, errors.ErrCodeInternal, errors.DefaultMessageForCode(errors.ErrCodeInternal), nil
}
