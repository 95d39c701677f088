package separationgateway

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/veedubyou/stem-split-be/src/server/internal/errors/api"
	"github.com/veedubyou/stem-split-be/src/server/internal/errors/gateway"
	jobentity "github.com/veedubyou/stem-split-be/src/server/internal/job/entity"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
	separationerrors "github.com/veedubyou/stem-split-be/src/server/internal/separation/errors"
	separationusecase "github.com/veedubyou/stem-split-be/src/server/internal/separation/usecase"
	"github.com/veedubyou/stem-split-be/src/shared/lib/request"
)

type Gateway struct {
	usecase separationusecase.Usecase
}

func NewGateway(usecase separationusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

type separateResponse struct {
	Status     string           `json:"status"`
	JobID      string           `json:"job_id"`
	Model      string           `json:"model"`
	Format     string           `json:"format"`
	Stems      []jobentity.Stem `json:"stems"`
	TotalStems int              `json:"total_stems"`
}

func (g Gateway) Separate(c echo.Context) error {
	ctx := request.Context(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		err = errors.Wrap(err, "No file field was found on the form")
		apiErr := api.CommitError(err,
			separationerrors.NoFileProvidedCode,
			"No audio file was provided")
		return gateway.ErrorResponse(c, apiErr)
	}

	contents, err := readUpload(fileHeader)
	if err != nil {
		err = errors.Wrap(err, "Failed to read the uploaded file")
		apiErr := api.CommitError(err,
			separationerrors.NoFileProvidedCode,
			"The uploaded file could not be read")
		return gateway.ErrorResponse(c, apiErr)
	}

	job, apiErr := g.usecase.Separate(ctx, separationusecase.SeparateRequest{
		FileName: fileHeader.Filename,
		Contents: contents,
		Model:    c.FormValue("model"),
		Format:   c.FormValue("format"),
	})

	if apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, separateResponse{
		Status:     "success",
		JobID:      job.ID,
		Model:      job.Model,
		Format:     job.Format,
		Stems:      job.Stems,
		TotalStems: len(job.Stems),
	})
}

type modelDescription struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Stems       []string `json:"stems"`
}

func (g Gateway) ListModels(c echo.Context) error {
	models := []modelDescription{}

	for _, splitType := range engine.AllSplitTypes() {
		models = append(models, modelDescription{
			Name:        string(splitType),
			Description: splitType.Description(),
			Stems:       splitType.StemNames(),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"models": models,
	})
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open the upload")
	}

	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to read the upload contents")
	}

	return contents, nil
}
