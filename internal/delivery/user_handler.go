package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/delivery/response"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/middleware"
)

type UserHandler struct {
	useCase domain.UserUseCase
	posts   domain.PostUseCase
	log     *logrus.Entry
}

func NewUserHandler(uc domain.UserUseCase, posts domain.PostUseCase, log *logrus.Logger) *UserHandler {
	return &UserHandler{
		useCase: uc,
		posts:   posts,
		log:     logger.Named(log, "routes.users"),
	}
}

// RegisterRoutes mounts registration publicly; everything else needs authenticated.
func (h *UserHandler) RegisterRoutes(users gin.IRouter, authenticated gin.HandlerFunc, adminOnly gin.HandlerFunc) {
	users.POST("", h.CreateUser)
	users.GET("/:user_id/posts/:post_id", h.GetUserPost)

	member := users.Group("", authenticated)
	{
		member.GET("/:user_id", h.GetUser)
		member.PATCH("/:user_id", h.UpdateUser)
		member.POST("/:user_id/addresses", h.AddAddress)
		member.PATCH("/:user_id/role", adminOnly, h.ChangeRole)
	}
}

// pathID reads a positive integer path parameter.
func pathID(c *gin.Context, name, resource string) (int, error) {
	raw := c.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, &domain.InvalidIDError{Resource: resource, Value: raw, Hint: "expected a positive number"}
	}
	return id, nil
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var in domain.UserCreate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to create user")
		return
	}

	user, err := h.useCase.RegisterUser(c.Request.Context(), in)
	if err != nil {
		handleError(c, h.log, err, "Failed to create user")
		return
	}
	h.log.Infof("User registered: ID %d, Username %s", user.ID, user.Username)
	response.SuccessResponse(c, http.StatusCreated, "User created successfully", domain.NewUserResponse(user))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := pathID(c, "user_id", "user")
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve user")
		return
	}
	actor, _ := middleware.CurrentUser(c)

	user, err := h.useCase.GetProfile(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve user")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "User retrieved successfully", domain.NewUserProfileResponse(user))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := pathID(c, "user_id", "user")
	if err != nil {
		handleError(c, h.log, err, "Failed to update user")
		return
	}
	var in domain.UserUpdate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to update user")
		return
	}
	actor, _ := middleware.CurrentUser(c)

	user, err := h.useCase.UpdateUser(c.Request.Context(), actor, id, in)
	if err != nil {
		handleError(c, h.log, err, "Failed to update user")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "User updated successfully", domain.NewUserProfileResponse(user))
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, err := pathID(c, "user_id", "user")
	if err != nil {
		handleError(c, h.log, err, "Failed to change role")
		return
	}
	var in domain.RoleUpdate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to change role")
		return
	}

	user, err := h.useCase.ChangeRole(c.Request.Context(), id, in.Role)
	if err != nil {
		handleError(c, h.log, err, "Failed to change role")
		return
	}
	h.log.Infof("User %d role changed to %s", user.ID, user.Role)
	response.SuccessResponse(c, http.StatusOK, "Role updated successfully", domain.NewUserResponse(user))
}

type addressQuery struct {
	SetAsDefault bool `form:"set_as_default"`
}

func (h *UserHandler) AddAddress(c *gin.Context) {
	id, err := pathID(c, "user_id", "user")
	if err != nil {
		handleError(c, h.log, err, "Failed to add address")
		return
	}
	var q addressQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to add address")
		return
	}
	var in domain.AddressCreate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to add address")
		return
	}
	actor, _ := middleware.CurrentUser(c)

	address, err := h.useCase.AddAddress(c.Request.Context(), actor, id, in, q.SetAsDefault)
	if err != nil {
		handleError(c, h.log, err, "Failed to add address")
		return
	}
	response.SuccessResponse(c, http.StatusCreated, "Address added successfully", address)
}

func (h *UserHandler) GetUserPost(c *gin.Context) {
	userID, err := pathID(c, "user_id", "user")
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve post")
		return
	}
	postID, err := pathID(c, "post_id", "post")
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve post")
		return
	}

	post, err := h.posts.GetApprovedPost(c.Request.Context(), userID, postID)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve post")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Post retrieved successfully", post)
}
