package http

import (
	"net/http"
	"strconv"
	"strings"

	echo "github.com/labstack/echo/v4"

	"github.com/crmkit/crm-gateway/internal/apperr"
	"github.com/crmkit/crm-gateway/internal/http/middleware"
	"github.com/crmkit/crm-gateway/internal/model"
	"github.com/crmkit/crm-gateway/internal/repository"
)

type interactionCreateReq struct {
	CustomerID int64  `json:"customer_id"`
	Type       string `json:"type"`
	Notes      string `json:"notes"`
}

func createInteractionHandler(interactions repository.InteractionsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ownerID, ok := middleware.UserIDFromCtx(c)
		if !ok || ownerID <= 0 {
			return apperr.Auth("Unauthorized")
		}

		var req interactionCreateReq
		if err := c.Bind(&req); err != nil {
			return apperr.Validation("invalid request body")
		}

		if req.CustomerID <= 0 {
			return apperr.Validation("customer_id is required")
		}
		if strings.TrimSpace(req.Type) == "" {
			return apperr.Validation("type is required")
		}

		// customer_id is not checked against the caller's customers here;
		// the row is written with the caller as owner either way.
		created, err := interactions.Create(c.Request().Context(), model.Interaction{
			CustomerID: req.CustomerID,
			UserID:     ownerID,
			Type:       req.Type,
			Notes:      req.Notes,
		})
		if err != nil {
			return apperr.Store(err)
		}

		return c.JSON(http.StatusCreated, created)
	}
}

func listInteractionsHandler(interactions repository.InteractionsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ownerID, ok := middleware.UserIDFromCtx(c)
		if !ok || ownerID <= 0 {
			return apperr.Auth("Unauthorized")
		}

		customerID, err := strconv.ParseInt(c.Param("customerId"), 10, 64)
		if err != nil || customerID <= 0 {
			return apperr.Validation("invalid customer id")
		}

		rows, err := interactions.ListByCustomer(c.Request().Context(), ownerID, customerID)
		if err != nil {
			return apperr.Store(err)
		}

		return c.JSON(http.StatusOK, rows)
	}
}
