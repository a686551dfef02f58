package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/avelasq/authgate/internal/accounts"
	"github.com/avelasq/authgate/internal/domain/user"
	"github.com/avelasq/authgate/internal/http/handlers"
	"github.com/avelasq/authgate/internal/jobs"
	"github.com/avelasq/authgate/internal/policy"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementations of the handlers.AccountsService interface

type fakeAccounts struct {
	registerFn func(ctx context.Context, email, password string) (user.User, error)
	loginFn    func(ctx context.Context, email, password string) (user.User, error)
}

func (f *fakeAccounts) Register(ctx context.Context, email, password string) (user.User, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, email, password)
	}
	return user.User{}, nil
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (user.User, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return user.User{}, nil
}

type fakeEnqueuer struct {
	enqueueFn func(ctx context.Context, j jobs.Job) error
	jobs      []jobs.Job
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, j jobs.Job) error {
	if f.enqueueFn != nil {
		return f.enqueueFn(ctx, j)
	}
	f.jobs = append(f.jobs, j)
	return nil
}

func newAuthRouter(h *handlers.AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var out map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return out
}

func TestRegisterSuccess(t *testing.T) {
	queue := &fakeEnqueuer{}

	h := &handlers.AuthHandler{
		Accounts: &fakeAccounts{
			registerFn: func(ctx context.Context, email, password string) (user.User, error) {
				return user.User{ID: "u-1", Email: email}, nil
			},
		},
		Queue: queue,
	}

	w := postJSON(t, newAuthRouter(h), "/register", `{"email":"a@b.com","password":"Abcdefg1!"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["message"] != "Registration successful for a@b.com!" {
		t.Fatalf("unexpected message: %q", body["message"])
	}

	if len(queue.jobs) != 1 {
		t.Fatalf("expected 1 enqueued job, got %d", len(queue.jobs))
	}
	if queue.jobs[0].Type != jobs.JobUserWelcome {
		t.Fatalf("unexpected job type: %q", queue.jobs[0].Type)
	}
}

func TestRegisterQueueFailureDoesNotFailRequest(t *testing.T) {
	h := &handlers.AuthHandler{
		Accounts: &fakeAccounts{
			registerFn: func(ctx context.Context, email, password string) (user.User, error) {
				return user.User{ID: "u-1", Email: email}, nil
			},
		},
		Queue: &fakeEnqueuer{
			enqueueFn: func(ctx context.Context, j jobs.Job) error {
				return errors.New("broker down")
			},
		},
	}

	w := postJSON(t, newAuthRouter(h), "/register", `{"email":"a@b.com","password":"Abcdefg1!"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 despite queue failure, got %d", w.Code)
	}
}

func TestRegisterErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"missing email", accounts.ErrMissingEmail, http.StatusBadRequest, "Missing email"},
		{"missing password", accounts.ErrMissingPassword, http.StatusBadRequest, "Missing password"},
		{"too short", policy.Validate("Ab1!"), http.StatusBadRequest, "Password must be more than 8 characters."},
		{"duplicate", accounts.ErrDuplicateUser, http.StatusBadRequest, "User already exists"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &handlers.AuthHandler{
				Accounts: &fakeAccounts{
					registerFn: func(ctx context.Context, email, password string) (user.User, error) {
						return user.User{}, tc.err
					},
				},
			}

			w := postJSON(t, newAuthRouter(h), "/register", `{"email":"a@b.com","password":"x"}`)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, w.Code)
			}

			body := decodeBody(t, w)
			if body["error"] != tc.wantError {
				t.Fatalf("expected error %q, got %q", tc.wantError, body["error"])
			}
		})
	}
}

func TestRegisterInternalErrorDoesNotLeak(t *testing.T) {
	h := &handlers.AuthHandler{
		Accounts: &fakeAccounts{
			registerFn: func(ctx context.Context, email, password string) (user.User, error) {
				return user.User{}, errors.New("pq: connection refused on 10.0.0.5")
			},
		},
	}

	w := postJSON(t, newAuthRouter(h), "/register", `{"email":"a@b.com","password":"Abcdefg1!"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}

	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Fatalf("internal error detail leaked to client: %s", w.Body.String())
	}

	body := decodeBody(t, w)
	if body["error"] == "" {
		t.Fatal("expected generic error message")
	}
}

func TestLoginSuccess(t *testing.T) {
	h := &handlers.AuthHandler{
		Accounts: &fakeAccounts{
			loginFn: func(ctx context.Context, email, password string) (user.User, error) {
				return user.User{ID: "u-1", Email: email}, nil
			},
		},
	}

	w := postJSON(t, newAuthRouter(h), "/login", `{"email":"a@b.com","password":"Abcdefg1!"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["message"] != "Logged in successfully, Welcome a@b.com!" {
		t.Fatalf("unexpected message: %q", body["message"])
	}
}

func TestLoginErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"unknown user", accounts.ErrUserNotFound, http.StatusNotFound, "User not found!"},
		{"wrong password", accounts.ErrInvalidCredentials, http.StatusBadRequest, "Invalid login credentials"},
		{"missing email", accounts.ErrMissingEmail, http.StatusBadRequest, "Missing email"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &handlers.AuthHandler{
				Accounts: &fakeAccounts{
					loginFn: func(ctx context.Context, email, password string) (user.User, error) {
						return user.User{}, tc.err
					},
				},
			}

			w := postJSON(t, newAuthRouter(h), "/login", `{"email":"a@b.com","password":"x"}`)

			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, w.Code)
			}

			body := decodeBody(t, w)
			if body["error"] != tc.wantError {
				t.Fatalf("expected error %q, got %q", tc.wantError, body["error"])
			}
		})
	}
}

func TestRegisterMalformedBody(t *testing.T) {
	h := &handlers.AuthHandler{Accounts: &fakeAccounts{}}

	w := postJSON(t, newAuthRouter(h), "/register", `{"email": "a@b.com",`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["error"] == "" {
		t.Fatal("expected error message for malformed JSON")
	}
}
