package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"livestream-pipeline/pkg/errno"
	"livestream-pipeline/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: errno.OK.Message, Data: data})
}

// Failed 失败响应，根据错误码选择 HTTP 状态
func Failed(c *gin.Context, err error) {
	e := errno.Decode(err)
	status := errno.HTTPStatus(e)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", map[string]interface{}{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
			"error":      err.Error(),
		})
	}
	c.JSON(status, Response{Code: e.Code, Message: err.Error()})
}

// TriggerResponse 手动触发接口的响应结构
type TriggerResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message,omitempty"`
	LivestreamID string      `json:"livestreamId,omitempty"`
	Chapters     interface{} `json:"chapters,omitempty"`
	Error        string      `json:"error,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

// TriggerSucceeded 触发成功
func TriggerSucceeded(c *gin.Context, resp TriggerResponse) {
	resp.Success = true
	c.JSON(http.StatusOK, resp)
}

// TriggerFailed 触发失败，error 为错误码描述，errorMessage 为完整原因
func TriggerFailed(c *gin.Context, livestreamID string, err error) {
	e := errno.Decode(err)
	status := errno.HTTPStatus(e)
	if status >= http.StatusInternalServerError {
		logger.Error("Pipeline trigger failed", map[string]interface{}{
			"path":          c.FullPath(),
			"request_id":    c.GetString("request_id"),
			"livestream_id": livestreamID,
			"error":         err.Error(),
		})
	}
	c.JSON(status, TriggerResponse{
		Success:      false,
		LivestreamID: livestreamID,
		Error:        e.Message,
		ErrorMessage: err.Error(),
	})
}
