package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"capgrid/internal/response"
	apperrors "capgrid/pkg/errors"

	"github.com/gin-gonic/gin"
)

// DownloadFile serves extracted frames under the job root.
func (h Handler) DownloadFile(c *gin.Context) {
	requestedFile := c.Param("filepath")
	if hasParentTraversal(requestedFile) {
		c.JSON(http.StatusForbidden, response.FromError(apperrors.NewWithDetail(apperrors.CodeInvalidParams, "Invalid parameters", "path escapes the job root")))
		return
	}

	localFilePath, ok := resolveDownloadPath(requestedFile)
	if !ok {
		c.JSON(http.StatusNotFound, response.FromError(apperrors.ErrNotFound))
		return
	}
	info, err := os.Stat(localFilePath)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, response.FromError(apperrors.ErrNotFound))
		return
	}
	c.FileAttachment(localFilePath, filepath.Base(localFilePath))
}
