package handler

import (
	"strings"

	"capgrid/config"
	"capgrid/internal/response"

	"github.com/gin-gonic/gin"
)

const maskedSecret = "******"

// GetConfig returns the active configuration with secrets masked.
func (h Handler) GetConfig(c *gin.Context) {
	conf := config.Conf
	if strings.TrimSpace(conf.Describe.ApiKey) != "" {
		conf.Describe.ApiKey = maskedSecret
	}
	if conf.Queue.RedisPassword != "" {
		conf.Queue.RedisPassword = maskedSecret
	}
	response.Success(c, conf)
}
