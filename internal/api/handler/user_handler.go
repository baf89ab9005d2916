package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/threadly/threadly-api/internal/core/domain"
	"github.com/threadly/threadly-api/internal/core/ports"
)

// UserHandler handles HTTP requests for account operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// --- Request / Response types ---

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateBiographyRequest struct {
	Username  string  `json:"username"`
	Biography *string `json:"biography"`
}

type authResponse struct {
	User  *domain.SafeUser `json:"user"`
	Token string           `json:"token,omitempty"`
}

// Signup handles POST /user/signup.
//
// @Summary      Create an account
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Credentials"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /user/signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user body")
	}

	user, token, err := h.service.Signup(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: user, Token: token})
}

// Login handles POST /user/login.
//
// @Summary      Authenticate and obtain a session token
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /user/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user body")
	}

	user, token, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user, Token: token})
}

// ResetPassword handles PATCH /user/resetPassword.
//
// @Summary      Replace the account password
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      credentialsRequest  true  "Username and new password"
// @Success      200   {object}  domain.SafeUser
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /user/resetPassword [patch]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user body")
	}

	user, err := h.service.ResetPassword(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateBiography handles PATCH /user/updateBiography. An empty biography is
// legal (clearing it); a missing key is not.
//
// @Summary      Update the account biography
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateBiographyRequest  true  "Username and biography"
// @Success      200   {object}  domain.SafeUser
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /user/updateBiography [patch]
func (h *UserHandler) UpdateBiography(c echo.Context) error {
	var req updateBiographyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and biography are required")
	}
	if req.Username == "" || req.Biography == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and biography are required")
	}

	user, err := h.service.UpdateBiography(c.Request().Context(), req.Username, *req.Biography)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser handles GET /user/getUser/:username.
//
// @Summary      Fetch one user
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  domain.SafeUser
// @Failure      404       {object}  errorResponse
// @Router       /user/getUser/{username} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetUsers handles GET /user/getUsers.
//
// @Summary      List all users
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.SafeUser
// @Router       /user/getUsers [get]
func (h *UserHandler) GetUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// DeleteUser handles DELETE /user/deleteUser/:username.
//
// @Summary      Delete an account
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  map[string]string
// @Failure      404       {object}  errorResponse
// @Router       /user/deleteUser/{username} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	username := c.Param("username")
	if err := h.service.DeleteUser(c.Request().Context(), username); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// Online handles GET /user/online.
//
// @Summary      List currently online users
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  string
// @Router       /user/online [get]
func (h *UserHandler) Online(c echo.Context) error {
	users, err := h.service.OnlineUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
