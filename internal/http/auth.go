package http

import (
	"net/http"

	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/crmkit/crm-gateway/internal/apperr"
	"github.com/crmkit/crm-gateway/internal/metrics"
	"github.com/crmkit/crm-gateway/internal/repository"
	"github.com/crmkit/crm-gateway/internal/token"
	"github.com/crmkit/crm-gateway/internal/util"
)

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const minPasswordLen = 6

func registerHandler(users repository.UsersRepository, tokens *token.Manager, bcryptCost int) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsReq
		if err := c.Bind(&req); err != nil {
			return apperr.Validation("invalid request body")
		}

		email := util.NormalizeEmail(req.Email)
		if !util.ValidEmail(email) {
			return apperr.Validation("a valid email is required")
		}
		if len(req.Password) < minPasswordLen {
			return apperr.Validation("password must be at least 6 characters")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			log.Errorf("bcrypt hash failed: %v", err)
			return apperr.Store(err)
		}

		user, err := users.Create(c.Request().Context(), email, string(hash))
		if err == repository.ErrDuplicateEmail {
			return apperr.Conflict("email already registered")
		}
		if err != nil {
			return apperr.Store(err)
		}

		signed, err := tokens.Generate(user.ID)
		if err != nil {
			return apperr.Store(err)
		}

		return c.JSON(http.StatusCreated, map[string]string{"token": signed})
	}
}

func loginHandler(users repository.UsersRepository, tokens *token.Manager) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req credentialsReq
		if err := c.Bind(&req); err != nil {
			return apperr.Validation("invalid request body")
		}

		email := util.NormalizeEmail(req.Email)
		if !util.ValidEmail(email) {
			return apperr.Validation("a valid email is required")
		}
		if req.Password == "" {
			return apperr.Validation("password is required")
		}

		user, err := users.GetByEmail(c.Request().Context(), email)
		if err != nil {
			return apperr.Store(err)
		}

		// Same response for unknown email and wrong password.
		if user == nil {
			metrics.AuthFailuresTotal.Inc()
			return apperr.Auth("Invalid credentials")
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			metrics.AuthFailuresTotal.Inc()
			return apperr.Auth("Invalid credentials")
		}

		signed, err := tokens.Generate(user.ID)
		if err != nil {
			return apperr.Store(err)
		}

		return c.JSON(http.StatusOK, map[string]string{"token": signed})
	}
}
