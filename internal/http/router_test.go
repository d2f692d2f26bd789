package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	echo "github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/crmkit/crm-gateway/internal/model"
	"github.com/crmkit/crm-gateway/internal/repository"
	"github.com/crmkit/crm-gateway/internal/token"
)

// --- in-memory fakes ---

type fakeUsers struct {
	nextID  int64
	byEmail map[string]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, email, passwordHash string) (*model.User, error) {
	if _, ok := f.byEmail[email]; ok {
		return nil, repository.ErrDuplicateEmail
	}
	f.nextID++
	u := &model.User{ID: f.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.byEmail[email], nil
}

type fakeCustomers struct {
	nextID int64
	rows   []model.Customer
}

func (f *fakeCustomers) seed(c model.Customer) model.Customer {
	f.nextID++
	c.ID = f.nextID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	f.rows = append(f.rows, c)
	return c
}

func (f *fakeCustomers) Create(_ context.Context, c model.Customer) (*model.Customer, error) {
	created := f.seed(c)
	return &created, nil
}

func (f *fakeCustomers) GetByID(_ context.Context, userID, id int64) (*model.Customer, error) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			cp := f.rows[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomers) List(_ context.Context, userID int64, flt model.CustomerFilter) ([]model.Customer, int, error) {
	contains := func(hay, needle string) bool {
		return strings.Contains(strings.ToLower(hay), strings.ToLower(needle))
	}

	matched := []model.Customer{}
	for _, r := range f.rows {
		if r.UserID != userID {
			continue
		}
		if flt.Search != "" &&
			!contains(r.Name, flt.Search) && !contains(r.Email, flt.Search) && !contains(r.Phone, flt.Search) {
			continue
		}
		if flt.Company != "" && !contains(r.Company, flt.Company) {
			continue
		}
		matched = append(matched, r)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (flt.Page - 1) * flt.Limit
	if start >= total {
		return []model.Customer{}, total, nil
	}
	end := start + flt.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeCustomers) Update(_ context.Context, userID, id int64, upd repository.CustomerUpdate) (*model.Customer, error) {
	for i := range f.rows {
		if f.rows[i].ID != id || f.rows[i].UserID != userID {
			continue
		}
		if upd.Name != nil {
			f.rows[i].Name = *upd.Name
		}
		if upd.Email != nil {
			f.rows[i].Email = *upd.Email
		}
		if upd.Phone != nil {
			f.rows[i].Phone = *upd.Phone
		}
		if upd.Company != nil {
			f.rows[i].Company = *upd.Company
		}
		f.rows[i].UpdatedAt = time.Now()
		cp := f.rows[i]
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeCustomers) Delete(_ context.Context, userID, id int64) error {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeInteractions struct {
	nextID int64
	rows   []model.Interaction
}

func (f *fakeInteractions) Create(_ context.Context, in model.Interaction) (*model.Interaction, error) {
	f.nextID++
	in.ID = f.nextID
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	f.rows = append(f.rows, in)
	cp := in
	return &cp, nil
}

func (f *fakeInteractions) ListByCustomer(_ context.Context, userID, customerID int64) ([]model.Interaction, error) {
	matched := []model.Interaction{}
	for _, r := range f.rows {
		if r.CustomerID == customerID && r.UserID == userID {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

// --- helpers ---

type testEnv struct {
	router       *echo.Echo
	tokens       *token.Manager
	users        *fakeUsers
	customers    *fakeCustomers
	interactions *fakeInteractions
}

func newTestEnv() *testEnv {
	return newTestEnvWithSecret("test-secret")
}

func newTestEnvWithSecret(secret string) *testEnv {
	env := &testEnv{
		tokens:       token.NewManager(secret),
		users:        newFakeUsers(),
		customers:    &fakeCustomers{},
		interactions: &fakeInteractions{},
	}
	env.router = NewRouter(Deps{
		Users:        env.users,
		Customers:    env.customers,
		Interactions: env.interactions,
		Tokens:       env.tokens,
		BcryptCost:   bcrypt.MinCost,
	})
	return env
}

func (env *testEnv) bearer(t *testing.T, userID int64) string {
	t.Helper()
	signed, err := env.tokens.Generate(userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return signed
}

func (env *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

type errEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}
