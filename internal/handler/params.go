package handler

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"unisphere/pkg/response"

	"github.com/gin-gonic/gin"
)

// parseID 解析路径或查询参数中的ID，非法值返回0，由服务层给出对应的错误信息
func parseID(raw string) uint {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}

// queryInt 读取整数查询参数，缺省或非法时返回0
func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}

// bindJSON 解析请求体；空请求体视为空对象，字段缺失交给服务层校验
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}
