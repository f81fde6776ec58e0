package handler

import (
	"unisphere/internal/service"
	"unisphere/pkg/jwt"
	"unisphere/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 关注关系与用户资料
type UserHandler struct {
	follows *service.FollowService
	users   *service.UserService
}

func NewUserHandler(follows *service.FollowService, users *service.UserService) *UserHandler {
	return &UserHandler{follows: follows, users: users}
}

// ToggleFollow 关注/取消关注
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	following, err := h.follows.ToggleFollow(c.Request.Context(), jwt.GetUserID(c), parseID(c.Param("id")))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"following": following})
}

// Followers 粉丝列表
func (h *UserHandler) Followers(c *gin.Context) {
	userID := parseID(c.Param("id"))
	if userID == 0 {
		response.FromError(c, service.ErrUserIDRequired)
		return
	}
	list, err := h.follows.ListFollowers(c.Request.Context(), userID, jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// Following 关注列表，未指定id时为当前用户
func (h *UserHandler) Following(c *gin.Context) {
	userID := jwt.GetUserID(c)
	if raw := c.Query("id"); raw != "" {
		if userID = parseID(raw); userID == 0 {
			response.FromError(c, service.ErrUserIDRequired)
			return
		}
	}
	list, err := h.follows.ListFollowing(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// Stats 主页统计
func (h *UserHandler) Stats(c *gin.Context) {
	userID := parseID(c.Param("id"))
	if userID == 0 {
		response.FromError(c, service.ErrUserIDRequired)
		return
	}
	st, err := h.follows.Stats(c.Request.Context(), userID, jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, st)
}

// Suggestions 推荐关注
func (h *UserHandler) Suggestions(c *gin.Context) {
	list, err := h.users.Suggestions(c.Request.Context(), jwt.GetUserID(c), queryInt(c, "limit"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// UpdateProfile 修改资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var in service.ProfileUpdate
	if !bindJSON(c, &in) {
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), jwt.GetUserID(c), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, response.FilterUserInfo(user))
}

// Profile 按用户名查看主页
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.users.ProfileByUsername(c.Request.Context(), jwt.GetUserID(c), c.Param("user"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, profile)
}
