package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/response"
)

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "New", "email": "new@example.com", "password": "password123",
		"confirm_password": "different", "role": "student",
	})
	expectStatus(t, w, http.StatusBadRequest)
	expectCode(t, body, response.ErrValidation)
	if _, ok := body.Error.Fields["confirm_password"]; !ok {
		t.Fatalf("expected confirm_password field error, got %v", body.Error.Fields)
	}

	w, body = env.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Dup", "email": "STUDENT@example.com", "password": "password123",
		"confirm_password": "password123", "role": "student",
	})
	expectStatus(t, w, http.StatusConflict)
	expectCode(t, body, response.ErrUserExists)
}

func TestRegisterCreatesAccount(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Grace", "email": "grace@example.com", "password": "password123",
		"confirm_password": "password123", "role": "admin",
	})
	expectStatus(t, w, http.StatusCreated)

	var resp model.AuthResponse
	decode(t, body.Data, &resp)
	if resp.Token == "" || resp.User.Role != model.RoleAdmin {
		t.Fatalf("unexpected auth response: %+v", resp)
	}
}

func TestLoginReplacesStudentToken(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "student@example.com", "password": "wrong",
	})
	expectStatus(t, w, http.StatusUnauthorized)
	expectCode(t, body, response.ErrInvalidCredentials)

	w, body = env.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "Student@Example.com", "password": "password123",
	})
	expectStatus(t, w, http.StatusOK)
	var resp model.AuthResponse
	decode(t, body.Data, &resp)

	w, body = env.do(t, http.MethodGet, "/auth/me", env.studentToken, nil)
	expectStatus(t, w, http.StatusUnauthorized)
	expectCode(t, body, response.ErrSessionInvalidated)

	w, body = env.do(t, http.MethodGet, "/auth/me", resp.Token, nil)
	expectStatus(t, w, http.StatusOK)
	var me struct {
		User model.User `json:"user"`
	}
	decode(t, body.Data, &me)
	if me.User.Email != "student@example.com" {
		t.Fatalf("unexpected user: %+v", me.User)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodPost, "/auth/logout", env.studentToken, nil)
	expectStatus(t, w, http.StatusOK)

	w, body := env.do(t, http.MethodGet, "/auth/me", env.studentToken, nil)
	expectStatus(t, w, http.StatusUnauthorized)
	expectCode(t, body, response.ErrSessionInvalidated)

	// Admin tokens are stateless.
	w, _ = env.do(t, http.MethodPost, "/auth/logout", env.adminToken, nil)
	expectStatus(t, w, http.StatusOK)
	w, _ = env.do(t, http.MethodGet, "/auth/me", env.adminToken, nil)
	expectStatus(t, w, http.StatusOK)
}

func TestResetStudentLogin(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodDelete, "/admin/users/abc/login", env.adminToken, nil)
	expectStatus(t, w, http.StatusBadRequest)
	expectCode(t, body, response.ErrInvalidID)

	w, body = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/users/%d/login", env.studentID), env.studentToken, nil)
	expectStatus(t, w, http.StatusForbidden)
	expectCode(t, body, response.ErrAdminAccessOnly)

	w, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/admin/users/%d/login", env.studentID), env.adminToken, nil)
	expectStatus(t, w, http.StatusOK)

	w, body = env.do(t, http.MethodGet, "/student/lobby", env.studentToken, nil)
	expectStatus(t, w, http.StatusUnauthorized)
	expectCode(t, body, response.ErrSessionInvalidated)
}
