package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-catalog-ws/internal/model"
	"go-catalog-ws/internal/repository"
	"go-catalog-ws/pkg/database"
	"go-catalog-ws/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

func newTestAuth(t *testing.T) (AuthService, repository.UserRepository) {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "auth.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	users := repository.NewUserRepo(db)
	return NewAuthService(users, jwt.NewManager("test-secret", time.Hour)), users
}

func registration(email string) *RegisterRequest {
	return &RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Age:       36,
		Password:  "secret1",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newTestAuth(t)

	user, err := auth.Register(registration("  Ada@Example.com "))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ada@example.com" || user.Role != model.RoleUser || user.Provider != model.ProviderLocal {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Password == "secret1" {
		t.Fatalf("password stored in clear text")
	}

	resp, err := auth.Login("ADA@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := auth.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleUser || claims.Name != "Ada Lovelace" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := auth.Login("ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := auth.Login("nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	auth, _ := newTestAuth(t)
	if _, err := auth.Register(registration("ada@example.com")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := auth.Register(registration("ada@example.com")); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	bad := registration("not-an-email")
	bad.Password = "123"
	_, err := auth.Register(bad)
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) != 2 {
		t.Fatalf("expected two field errors, got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	auth, users := newTestAuth(t)
	for i := 0; i < 2; i++ {
		if err := auth.EnsureAdmin("admin@example.com", "adminpass"); err != nil {
			t.Fatalf("ensure admin #%d: %v", i, err)
		}
	}
	admin, err := users.FindByEmail("admin@example.com")
	if err != nil {
		t.Fatalf("find admin: %v", err)
	}
	if !admin.IsAdmin() {
		t.Fatalf("bootstrap account should be admin, got role %q", admin.Role)
	}
	if _, err := auth.Login("admin@example.com", "adminpass"); err != nil {
		t.Fatalf("admin login: %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	auth, _ := newTestAuth(t)
	user, err := auth.Register(registration("ada@example.com"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := auth.CurrentUser(user.ID)
	if err != nil || got.Email != user.Email {
		t.Fatalf("current user: %+v, %v", got, err)
	}
	if _, err := auth.CurrentUser(uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLoginWithGitHub(t *testing.T) {
	auth, users := newTestAuth(t)

	first, err := auth.LoginWithGitHub(&GitHubProfile{Login: "octocat", Email: "Octo@GitHub.com"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if first.User.FirstName != "octocat" || first.User.Provider != model.ProviderGitHub || first.User.Role != model.RoleUser {
		t.Fatalf("unexpected github user: %+v", first.User)
	}

	second, err := auth.LoginWithGitHub(&GitHubProfile{Login: "octocat", Email: "octo@github.com"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if second.User.ID != first.User.ID {
		t.Fatalf("second login should reuse the account")
	}

	stored, _ := users.FindByEmail("octo@github.com")
	if stored.CheckPassword("") {
		t.Fatalf("oauth accounts must not accept an empty password")
	}

	if _, err := auth.LoginWithGitHub(&GitHubProfile{Login: "ghost"}); err == nil {
		t.Fatalf("profile without email should be rejected")
	}
}

func TestGitHubOAuthExchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "the-code" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "gh-token", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(GitHubProfile{Login: "octocat", Name: "The Octocat"})
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"email": "old@github.com", "primary": false, "verified": true},
			{"email": "octo@github.com", "primary": true, "verified": true},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	gh := NewGitHubOAuth("id", "secret", "http://localhost/callback")
	gh.config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/login/oauth/authorize",
		TokenURL:  srv.URL + "/login/oauth/access_token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	gh.apiBase = srv.URL

	if u := gh.AuthCodeURL("xyz"); !strings.Contains(u, "state=xyz") || !strings.HasPrefix(u, srv.URL) {
		t.Fatalf("unexpected auth url %s", u)
	}

	profile, err := gh.Exchange(context.Background(), "the-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if profile.Login != "octocat" || profile.Email != "octo@github.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	if _, err := gh.Exchange(context.Background(), "wrong"); err == nil {
		t.Fatalf("expected exchange failure for a bad code")
	}
}
