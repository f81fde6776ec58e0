package handler

import (
	"unisphere/internal/service"
	"unisphere/pkg/jwt"
	"unisphere/pkg/response"

	"github.com/gin-gonic/gin"
)

// PostHandler 动态、点赞与评论
type PostHandler struct {
	service *service.PostService
}

func NewPostHandler(s *service.PostService) *PostHandler {
	return &PostHandler{service: s}
}

type postReq struct {
	Caption  string `json:"caption"`
	ImageURL string `json:"image_url"`
}

// Create 发布动态
func (h *PostHandler) Create(c *gin.Context) {
	var r postReq
	if !bindJSON(c, &r) {
		return
	}
	post, err := h.service.Create(c.Request.Context(), jwt.GetUserID(c), r.Caption, r.ImageURL)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, post)
}

// Update 修改动态，PUT /posts/update?id=
func (h *PostHandler) Update(c *gin.Context) {
	var r postReq
	if !bindJSON(c, &r) {
		return
	}
	post, err := h.service.Update(c.Request.Context(), jwt.GetUserID(c), parseID(c.Query("id")), r.Caption, r.ImageURL)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, post)
}

// Delete 删除动态，DELETE /posts/delete?id=
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), jwt.GetUserID(c), parseID(c.Query("id"))); err != nil {
		response.FromError(c, err)
		return
	}
	response.Message(c, "Post deleted successfully")
}

// Feed 首页动态
func (h *PostHandler) Feed(c *gin.Context) {
	page, err := h.service.Feed(c.Request.Context(), jwt.GetUserID(c), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, page)
}

// Explore 发现页
func (h *PostHandler) Explore(c *gin.Context) {
	page, err := h.service.Explore(c.Request.Context(), jwt.GetUserID(c), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, page)
}

// UserPosts 某个用户的全部动态
func (h *PostHandler) UserPosts(c *gin.Context) {
	posts, err := h.service.UserPosts(c.Request.Context(), jwt.GetUserID(c), parseID(c.Param("user")))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, posts)
}

// ToggleLike 点赞/取消点赞
func (h *PostHandler) ToggleLike(c *gin.Context) {
	liked, err := h.service.ToggleLike(c.Request.Context(), jwt.GetUserID(c), parseID(c.Param("id")))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"liked": liked})
}

// ListComments 评论列表
func (h *PostHandler) ListComments(c *gin.Context) {
	comments, err := h.service.ListComments(c.Request.Context(), parseID(c.Param("id")))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, comments)
}

// AddComment 发表评论
func (h *PostHandler) AddComment(c *gin.Context) {
	type req struct {
		Content string `json:"content"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	comment, err := h.service.AddComment(c.Request.Context(), jwt.GetUserID(c), parseID(c.Param("id")), r.Content)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, comment)
}
