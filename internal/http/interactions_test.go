package http

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crmkit/crm-gateway/internal/model"
)

func TestCreateInteraction(t *testing.T) {
	env := newTestEnv()
	owned := env.customers.seed(model.Customer{UserID: 1, Name: "Jo", Email: "jo@x.com", Phone: "555-1"})
	bearer := env.bearer(t, 1)

	rec := env.do(t, http.MethodPost, "/api/interactions", bearer, map[string]any{
		"customer_id": owned.ID,
		"type":        "call",
		"notes":       "left a voicemail",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Interaction
	decodeJSON(t, rec, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, owned.ID, created.CustomerID)
	assert.Equal(t, int64(1), created.UserID)
	assert.Equal(t, "call", created.Type)
}

func TestCreateInteraction_Validation(t *testing.T) {
	env := newTestEnv()
	bearer := env.bearer(t, 1)

	rec := env.do(t, http.MethodPost, "/api/interactions", bearer, map[string]any{
		"type": "call",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/interactions", bearer, map[string]any{
		"customer_id": 1,
		"type":        "   ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, env.interactions.rows)
}

// Creating an interaction against another user's customer is accepted: the
// row is written under the caller's id and never shows up for the real owner.
// This pins the currently shipped behavior.
func TestCreateInteraction_ForeignCustomerAccepted(t *testing.T) {
	env := newTestEnv()
	owned := env.customers.seed(model.Customer{UserID: 1, Name: "Jo", Email: "jo@x.com", Phone: "555-1"})
	asOther := env.bearer(t, 2)

	rec := env.do(t, http.MethodPost, "/api/interactions", asOther, map[string]any{
		"customer_id": owned.ID,
		"type":        "email",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Interaction
	decodeJSON(t, rec, &created)
	assert.Equal(t, int64(2), created.UserID)

	// the customer's actual owner does not see it
	asOwner := env.bearer(t, 1)
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/interactions/customer/%d", owned.ID), asOwner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []model.Interaction
	decodeJSON(t, rec, &rows)
	assert.Empty(t, rows)
}

func TestListInteractions_NewestFirstAndScoped(t *testing.T) {
	env := newTestEnv()
	owned := env.customers.seed(model.Customer{UserID: 1, Name: "Jo", Email: "jo@x.com", Phone: "555-1"})
	base := time.Now()

	for i, typ := range []string{"call", "email", "meeting"} {
		env.interactions.rows = append(env.interactions.rows, model.Interaction{
			ID:         int64(i + 1),
			CustomerID: owned.ID,
			UserID:     1,
			Type:       typ,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}
	// another owner's interaction against the same customer id
	env.interactions.rows = append(env.interactions.rows, model.Interaction{
		ID: 4, CustomerID: owned.ID, UserID: 2, Type: "call", CreatedAt: base.Add(time.Hour),
	})

	bearer := env.bearer(t, 1)
	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/interactions/customer/%d", owned.ID), bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []model.Interaction
	decodeJSON(t, rec, &rows)
	require.Len(t, rows, 3)
	assert.Equal(t, "meeting", rows[0].Type)
	assert.Equal(t, "email", rows[1].Type)
	assert.Equal(t, "call", rows[2].Type)
}

func TestListInteractions_EmptyIsNotAnError(t *testing.T) {
	env := newTestEnv()
	bearer := env.bearer(t, 1)

	rec := env.do(t, http.MethodGet, "/api/interactions/customer/42", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
