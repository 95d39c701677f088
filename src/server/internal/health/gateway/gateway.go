package healthgateway

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/engine"
	"github.com/veedubyou/stem-split-be/src/server/internal/separation/registry"
)

const serviceName = "stem-split-be"

type Gateway struct {
	registry       *registry.ModelRegistry
	requiredModels []engine.SplitType
}

func NewGateway(registry *registry.ModelRegistry, requiredModels []engine.SplitType) Gateway {
	return Gateway{
		registry:       registry,
		requiredModels: requiredModels,
	}
}

type healthResponse struct {
	Status       string   `json:"status"`
	Service      string   `json:"service"`
	Ready        bool     `json:"ready"`
	ModelsLoaded []string `json:"models_loaded"`
}

// Health reports ready only once every required model configuration has
// finished loading. It stays reachable while models are still warming
// up so orchestrators can poll it
func (g Gateway) Health(c echo.Context) error {
	ready := true
	for _, splitType := range g.requiredModels {
		if !g.registry.IsLoaded(splitType) {
			ready = false
			break
		}
	}

	loadedNames := []string{}
	for _, splitType := range g.registry.LoadedConfigurations() {
		loadedNames = append(loadedNames, string(splitType))
	}

	status := "ok"
	statusCode := http.StatusOK
	if !ready {
		status = "loading"
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, healthResponse{
		Status:       status,
		Service:      serviceName,
		Ready:        ready,
		ModelsLoaded: loadedNames,
	})
}

// Home is the index route, a tiny service descriptor pointing at the
// useful endpoints
func (g Gateway) Home(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service": serviceName,
		"endpoints": map[string]string{
			"health":   "GET /health",
			"models":   "GET /models",
			"separate": "POST /separate",
			"download": "GET /download/:job_id/:stem",
			"cleanup":  "DELETE /cleanup/:job_id",
		},
	})
}
