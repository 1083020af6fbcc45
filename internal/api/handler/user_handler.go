package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobzen/identity-service/internal/api/metrics"
	"github.com/jobzen/identity-service/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the caller's own sanitised account record.
//
// @Summary      Get own account
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      404  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetUser(c.Request().Context(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CompleteProfile sets the caller's own role, typically after an OAuth
// first login left it unassigned.
//
// @Summary      Set own role
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      completeProfileRequest  true  "Role to assume"
// @Success      200   {object}  domain.User
// @Router       /users/complete-profile [patch]
func (h *UserHandler) CompleteProfile(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req completeProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.SetRole(c.Request().Context(), caller.ID, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile patches the caller's own profile fields. Credential and
// reset state are unreachable through this endpoint.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  domain.User
// @Router       /users/profile [patch]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), caller.ID, ports.ProfilePatch{
		Name:      req.Name,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CreateManaged provisions an account owned by the calling employer.
//
// @Summary      Create a managed user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createManagedRequest  true  "Managed user details"
// @Success      201   {object}  domain.User
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/managed [post]
func (h *UserHandler) CreateManaged(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req createManagedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.CreateManaged(c.Request().Context(), caller, ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Role:      req.Role,
		Phone:     req.Phone,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	metrics.ManagedUserOpsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, user)
}

// ListManaged returns the calling employer's managed accounts, newest
// first, optionally filtered by role.
//
// @Summary      List managed users
// @Tags         users
// @Produce      json
// @Param        role  query     string  false  "Role filter"
// @Success      200   {array}   domain.User
// @Failure      401   {object}  errorResponse
// @Router       /users/managed [get]
func (h *UserHandler) ListManaged(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	users, err := h.userService.ListManaged(c.Request().Context(), caller, c.QueryParam("role"))
	if err != nil {
		return err
	}

	metrics.ManagedUserOpsTotal.WithLabelValues("list").Inc()
	return c.JSON(http.StatusOK, users)
}

// DeleteManaged removes a managed account owned by the calling employer.
//
// @Summary      Delete a managed user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "Managed user id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/managed/{id} [delete]
func (h *UserHandler) DeleteManaged(c echo.Context) error {
	caller, err := ctxCaller(c)
	if err != nil {
		return err
	}

	if err := h.userService.DeleteManaged(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}

	metrics.ManagedUserOpsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
