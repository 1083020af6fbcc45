package handler

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/jobzen/identity-service/internal/api/metrics"
	"github.com/jobzen/identity-service/internal/core/ports"
	"github.com/jobzen/identity-service/internal/infrastructure/oauth"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	authService ports.AuthService
	frontendURL string
}

func NewAuthHandler(authService ports.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{authService: authService, frontendURL: frontendURL}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  ports.AuthResult
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
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

	metrics.RegistrationsTotal.WithLabelValues(result.User.Role).Inc()
	return c.JSON(http.StatusCreated, result)
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.AuthResult
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, result)
}

// ForgotPassword starts the password-reset lifecycle. The response is the
// same whether or not the email exists.
//
// @Summary      Request a password reset link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      502   {object}  errorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// ResetPassword consumes a reset token and sets a new password.
//
// @Summary      Complete a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.Password)
	if err != nil {
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msg})
}

// OAuthRedirect sends the user to the provider's consent page. The state
// value is pinned in a short-lived cookie and checked on callback.
func (h *AuthHandler) OAuthRedirect(p oauth.Provider) echo.HandlerFunc {
	return func(c echo.Context) error {
		state := uuid.NewString()
		c.SetCookie(&http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/",
			MaxAge:   int((10 * time.Minute).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return c.Redirect(http.StatusTemporaryRedirect, p.AuthCodeURL(state))
	}
}

// OAuthCallback completes the provider flow: code exchange, profile fetch,
// reconcile-and-login, then redirect to the frontend with the session token.
func (h *AuthHandler) OAuthCallback(p oauth.Provider) echo.HandlerFunc {
	return func(c echo.Context) error {
		state := c.QueryParam("state")
		cookie, err := c.Cookie(oauthStateCookie)
		if err != nil || state == "" || cookie.Value != state {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid oauth state")
		}

		code := c.QueryParam("code")
		if code == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "missing authorization code")
		}

		ctx := c.Request().Context()
		accessToken, err := p.Exchange(ctx, code)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "provider token exchange failed")
		}

		identity, err := p.FetchIdentity(ctx, accessToken)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "provider profile fetch failed")
		}

		result, err := h.authService.OAuthLogin(ctx, *identity)
		if err != nil {
			return err
		}

		metrics.OAuthLoginsTotal.WithLabelValues(p.Name()).Inc()
		redirect := h.frontendURL + "/auth/callback?token=" + url.QueryEscape(result.Token)
		return c.Redirect(http.StatusTemporaryRedirect, redirect)
	}
}
