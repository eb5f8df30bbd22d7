package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/delivery/response"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/middleware"
)

type PostHandler struct {
	useCase domain.PostUseCase
	log     *logrus.Entry
}

func NewPostHandler(uc domain.PostUseCase, log *logrus.Logger) *PostHandler {
	return &PostHandler{
		useCase: uc,
		log:     logger.Named(log, "routes.posts"),
	}
}

func (h *PostHandler) RegisterRoutes(posts gin.IRouter, adminOnly, staffOnly gin.HandlerFunc) {
	posts.POST("", h.CreatePost)
	posts.DELETE("/:post_id", adminOnly, h.DeletePost)
	posts.POST("/:post_id/approve", staffOnly, h.ApprovePost)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var in domain.BlogPostCreate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to create post")
		return
	}
	author, _ := middleware.CurrentUser(c)

	post, err := h.useCase.CreatePost(c.Request.Context(), author, in)
	if err != nil {
		handleError(c, h.log, err, "Failed to create post")
		return
	}
	response.SuccessResponse(c, http.StatusCreated, "Post submitted for review", post)
}

type postActionResult struct {
	PostID int         `json:"post_id"`
	By     string      `json:"by"`
	Role   domain.Role `json:"role"`
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	id, err := pathID(c, "post_id", "post")
	if err != nil {
		handleError(c, h.log, err, "Failed to delete post")
		return
	}
	user, _ := middleware.CurrentUser(c)

	if err := h.useCase.DeletePost(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err, "Failed to delete post")
		return
	}
	h.log.Infof("Post %d deleted by %s", id, user.Username)
	response.SuccessResponse(c, http.StatusOK, "Post deleted successfully",
		postActionResult{PostID: id, By: user.Username, Role: user.Role})
}

func (h *PostHandler) ApprovePost(c *gin.Context) {
	id, err := pathID(c, "post_id", "post")
	if err != nil {
		handleError(c, h.log, err, "Failed to approve post")
		return
	}
	user, _ := middleware.CurrentUser(c)

	if _, err := h.useCase.ApprovePost(c.Request.Context(), user, id); err != nil {
		handleError(c, h.log, err, "Failed to approve post")
		return
	}
	h.log.Infof("Post %d approved by %s", id, user.Username)
	response.SuccessResponse(c, http.StatusOK, "Post approved successfully",
		postActionResult{PostID: id, By: user.Username, Role: user.Role})
}
