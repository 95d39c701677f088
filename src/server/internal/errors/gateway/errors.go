package gateway

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/veedubyou/stem-split-be/src/server/api_error"
	"github.com/veedubyou/stem-split-be/src/server/internal/errors/api"
	"github.com/veedubyou/stem-split-be/src/server/internal/job/errors"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/errors"
	"net/http"
)

var httpStatusCodeMap = map[api.ErrorCode]int{
	api.DefaultErrorCode:                     http.StatusInternalServerError,
	separationerrors.NoFileProvidedCode:      http.StatusBadRequest,
	separationerrors.EmptyFileCode:           http.StatusBadRequest,
	separationerrors.UnsupportedFileTypeCode: http.StatusBadRequest,
	separationerrors.InvalidModelCode:        http.StatusBadRequest,
	separationerrors.InvalidOutputFormatCode: http.StatusBadRequest,
	separationerrors.ModelLoadFailedCode:     http.StatusInternalServerError,
	separationerrors.SeparationFailedCode:    http.StatusInternalServerError,
	separationerrors.SeparationTimeoutCode:   http.StatusGatewayTimeout,
	separationerrors.StorageFailedCode:       http.StatusInternalServerError,
	separationerrors.ServerBusyCode:          http.StatusTooManyRequests,
	joberrors.JobNotFoundCode:                http.StatusNotFound,
	joberrors.StemNotFoundCode:               http.StatusNotFound,
	joberrors.BadJobDataCode:                 http.StatusInternalServerError,
}

func ErrorResponse(c echo.Context, err *api.Error) error {
	statusCode, ok := httpStatusCodeMap[err.ErrorCode]
	if !ok {
		msg := fmt.Sprintf("Error code %s has no HTTP status code mapping", err.ErrorCode)
		panic(msg)
	}

	return c.JSON(statusCode, api_error.JSONAPIError{
		Code:         string(err.ErrorCode),
		Msg:          err.UserMessage,
		ErrorDetails: err.Error(),
	})
}
