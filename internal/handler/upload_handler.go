package handler

import (
	"unisphere/internal/service"
	"unisphere/pkg/jwt"
	"unisphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service *service.MediaService
}

func NewUploadHandler(s *service.MediaService) *UploadHandler {
	return &UploadHandler{service: s}
}

// Presign 签发图片直传地址
func (h *UploadHandler) Presign(c *gin.Context) {
	type req struct {
		ContentType string `json:"contentType"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	ticket, err := h.service.PresignUpload(c.Request.Context(), jwt.GetUserID(c), r.ContentType)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, ticket)
}
