package response

import (
	"net/http"

	apperrors "capgrid/pkg/errors"

	"github.com/gin-gonic/gin"
)

const successMsg = "Success"

// Response is the standard API response structure
type Response struct {
	Error  int32  `json:"error"`            // Error code (0 = success)
	Msg    string `json:"msg"`              // Human-readable message
	Detail string `json:"detail,omitempty"` // Additional error details
	Data   any    `json:"data"`             // Response payload
}

// R sends a JSON response
func R(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Success returns a success response with data
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Error: apperrors.CodeSuccess,
		Msg:   successMsg,
		Data:  data,
	})
}

// Error returns an error response with code and message
func Error(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, Response{
		Error: int32(code),
		Msg:   msg,
		Data:  nil,
	})
}

// FromError converts an error to a Response. Errors that are not AppErrors
// get CodeUnknown and their own text as message.
func FromError(err error) Response {
	if err == nil {
		return Response{
			Error: apperrors.CodeSuccess,
			Msg:   successMsg,
		}
	}

	return Response{
		Error:  int32(apperrors.GetCode(err)),
		Msg:    apperrors.GetMessage(err),
		Detail: apperrors.GetDetail(err),
		Data:   nil,
	}
}

// ErrorResponse sends an error response from an error
func ErrorResponse(c *gin.Context, err error) {
	c.JSON(http.StatusOK, FromError(err))
}
