package handler

import (
	"strconv"

	"capgrid/internal/dto"
	"capgrid/internal/response"
	"capgrid/log"
	apperrors "capgrid/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bindError(err error) error {
	return apperrors.WrapWithDetail(apperrors.CodeInvalidParams, "Invalid parameters", err.Error(), err)
}

func (h Handler) FilterCaptions(c *gin.Context) {
	var req dto.FilterCaptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("FilterCaptions ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, bindError(err))
		return
	}

	data, err := h.Service.FilterCaptions(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) ResampleCaptions(c *gin.Context) {
	var req dto.ResampleCaptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("ResampleCaptions ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, bindError(err))
		return
	}

	data, err := h.Service.ResampleCaptions(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// ProcessCaptions runs the pipeline inside the request.
func (h Handler) ProcessCaptions(c *gin.Context) {
	var req dto.ProcessCaptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("ProcessCaptions ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, bindError(err))
		return
	}
	log.GetLogger().Info("ProcessCaptions received request",
		zap.Int("captions", len(req.Captions)),
		zap.String("vtt_path", req.VttPath),
		zap.Bool("describe", req.Describe))

	data, err := h.Service.Process(c.Request.Context(), req, nil)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) CreateJob(c *gin.Context) {
	var req dto.ProcessCaptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("CreateJob ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, bindError(err))
		return
	}

	data, err := h.Service.CreateJob(c.Request.Context(), req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) GetJob(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		response.ErrorResponse(c, apperrors.NewWithDetail(apperrors.CodeInvalidParams, "Invalid parameters", "jobId is required"))
		return
	}

	data, err := h.Service.GetJob(jobID)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) JobHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.ErrorResponse(c, bindError(err))
			return
		}
		limit = parsed
	}

	data, err := h.Service.JobHistory(limit)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h Handler) DeleteJob(c *gin.Context) {
	jobID := c.Param("jobId")
	if jobID == "" {
		response.ErrorResponse(c, apperrors.NewWithDetail(apperrors.CodeInvalidParams, "Invalid parameters", "jobId is required"))
		return
	}

	if err := h.Service.DeleteJob(jobID); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}
