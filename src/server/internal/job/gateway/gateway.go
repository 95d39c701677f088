package jobgateway

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/veedubyou/stem-split-be/src/server/internal/errors/api"
	"github.com/veedubyou/stem-split-be/src/server/internal/errors/gateway"
	jobusecase "github.com/veedubyou/stem-split-be/src/server/internal/job/usecase"
	"github.com/veedubyou/stem-split-be/src/shared/lib/request"
)

type Gateway struct {
	usecase jobusecase.Usecase
}

func NewGateway(usecase jobusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

func (g Gateway) DownloadStem(c echo.Context, jobID string, stemName string) error {
	ctx := request.Context(c)

	stem, apiErr := g.usecase.GetStem(ctx, jobID, stemName)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to get the stem for download")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.Attachment(stem.FilePath, stem.FileName)
}

func (g Gateway) CleanupJob(c echo.Context, jobID string) error {
	ctx := request.Context(c)

	apiErr := g.usecase.DeleteJob(ctx, jobID)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to clean up the job")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("Job %s cleaned up", jobID),
	})
}
