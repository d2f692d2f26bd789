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
	"github.com/crmkit/crm-gateway/internal/util"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

func listCustomersHandler(customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ownerID, ok := middleware.UserIDFromCtx(c)
		if !ok || ownerID <= 0 {
			return apperr.Auth("Unauthorized")
		}

		f := model.CustomerFilter{
			Search:  strings.TrimSpace(c.QueryParam("search")),
			Company: strings.TrimSpace(c.QueryParam("company")),
			Page:    defaultPage,
			Limit:   defaultLimit,
		}

		if v := c.QueryParam("page"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return apperr.Validation("page must be an integer >= 1")
			}
			f.Page = n
		}
		if v := c.QueryParam("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxLimit {
				return apperr.Validation("limit must be an integer between 1 and 100")
			}
			f.Limit = n
		}

		rows, total, err := customers.List(c.Request().Context(), ownerID, f)
		if err != nil {
			return apperr.Store(err)
		}

		return c.JSON(http.StatusOK, model.CustomerPage{
			Customers:  rows,
			Total:      total,
			Page:       f.Page,
			TotalPages: (total + f.Limit - 1) / f.Limit,
		})
	}
}

type customerCreateReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

func createCustomerHandler(customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ownerID, ok := middleware.UserIDFromCtx(c)
		if !ok || ownerID <= 0 {
			return apperr.Auth("Unauthorized")
		}

		var req customerCreateReq
		if err := c.Bind(&req); err != nil {
			return apperr.Validation("invalid request body")
		}

		if strings.TrimSpace(req.Name) == "" {
			return apperr.Validation("name is required")
		}
		if !util.ValidEmail(req.Email) {
			return apperr.Validation("a valid email is required")
		}
		if strings.TrimSpace(req.Phone) == "" {
			return apperr.Validation("phone is required")
		}

		created, err := customers.Create(c.Request().Context(), model.Customer{
			UserID:  ownerID,
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Company: req.Company,
		})
		if err != nil {
			return apperr.Store(err)
		}

		return c.JSON(http.StatusCreated, created)
	}
}

func getCustomerHandler(customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ownerID, ok := middleware.UserIDFromCtx(c)
		if !ok || ownerID <= 0 {
			return apperr.Auth("Unauthorized")
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return apperr.Validation("invalid customer id")
		}

		customer, err := customers.GetByID(c.Request().Context(), ownerID, id)
		if err != nil {
			return apperr.Store(err)
		}
		if customer == nil {
			return apperr.NotFound("Customer not found")
		}

		return c.JSON(http.StatusOK, customer)
	}
}

type customerUpdateReq struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
}

func updateCustomerHandler(customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ownerID, ok := middleware.UserIDFromCtx(c)
		if !ok || ownerID <= 0 {
			return apperr.Auth("Unauthorized")
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return apperr.Validation("invalid customer id")
		}

		var req customerUpdateReq
		if err := c.Bind(&req); err != nil {
			return apperr.Validation("invalid request body")
		}

		// Present fields follow the same rules as create.
		if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
			return apperr.Validation("name must not be empty")
		}
		if req.Email != nil && !util.ValidEmail(*req.Email) {
			return apperr.Validation("a valid email is required")
		}
		if req.Phone != nil && strings.TrimSpace(*req.Phone) == "" {
			return apperr.Validation("phone must not be empty")
		}

		updated, err := customers.Update(c.Request().Context(), ownerID, id, repository.CustomerUpdate{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Company: req.Company,
		})
		if err != nil {
			return apperr.Store(err)
		}
		if updated == nil {
			return apperr.NotFound("Customer not found")
		}

		return c.JSON(http.StatusOK, updated)
	}
}

func deleteCustomerHandler(customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ownerID, ok := middleware.UserIDFromCtx(c)
		if !ok || ownerID <= 0 {
			return apperr.Auth("Unauthorized")
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			return apperr.Validation("invalid customer id")
		}

		// "deleted" and "did not exist" are deliberately indistinguishable.
		if err := customers.Delete(c.Request().Context(), ownerID, id); err != nil {
			return apperr.Store(err)
		}

		return c.JSON(http.StatusOK, map[string]string{"message": "Customer deleted successfully"})
	}
}
