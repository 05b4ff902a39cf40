package handler

import (
	"errors"

	"github.com/iceymoss/news-hub/pkg/xerr"

	"github.com/gin-gonic/gin"
)

// respondError 按错误类型映射 HTTP 状态码并输出统一响应体
func respondError(c *gin.Context, err error) {
	c.JSON(xerr.HTTPStatus(err), gin.H{
		"success": false,
		"message": messageOf(err),
	})
}

func messageOf(err error) string {
	var cm *xerr.CodeMsg
	if errors.As(err, &cm) {
		return cm.Msg
	}
	return err.Error()
}
