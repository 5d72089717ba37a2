package handler

import (
	"capgrid/config"
	"capgrid/internal/deps"
	"capgrid/internal/response"

	"github.com/gin-gonic/gin"
)

var dependencyInventory = deps.ResolveDependencyInventory

type depsResData struct {
	Dependencies []deps.DependencyState `json:"dependencies"`
	Report       string                 `json:"report"`
}

// GetDeps reports where external tools were found.
func (h Handler) GetDeps(c *gin.Context) {
	states := dependencyInventory(config.Conf.Frames.FfmpegPath)
	response.Success(c, depsResData{
		Dependencies: states,
		Report:       deps.FormatDependencyReport(states),
	})
}
