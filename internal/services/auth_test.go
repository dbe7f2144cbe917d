package services

import (
	"context"
	"testing"
	"time"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/repos"
	"github.com/campfirehq/campfire-backend/internal/requestdata"
	"github.com/campfirehq/campfire-backend/internal/types"
)

func newAuthService(t *testing.T, env *testEnv) AuthService {
	t.Helper()
	tokenRepo := repos.NewUserTokenRepo(env.db, logger.NewNop())
	return NewAuthService(env.db, logger.NewNop(), env.userRepo, tokenRepo, "test-secret", time.Hour, 24*time.Hour)
}

func TestRegisterLoginRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(t, env)
	ctx := context.Background()

	user := &types.User{
		Email:     "Member@Example.com",
		Password:  "hunter22",
		FirstName: "Jordan",
		LastName:  "Reyes",
	}
	if err := auth.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "member@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	if user.Level != 1 {
		t.Fatalf("new user level=%d, want 1", user.Level)
	}

	if err := auth.RegisterUser(ctx, &types.User{
		Email:     "member@example.com",
		Password:  "other",
		FirstName: "Dup",
	}); err == nil {
		t.Fatal("duplicate email accepted")
	}

	access, refresh, err := auth.LoginUser(ctx, "MEMBER@example.com", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("empty tokens from login")
	}

	if _, _, err := auth.LoginUser(ctx, "member@example.com", "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}

	authedCtx, err := auth.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("request data=%+v, want user %s", rd, user.ID)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(t, env)
	ctx := context.Background()

	user := &types.User{Email: "rotate@example.com", Password: "pw123456", FirstName: "Ro"}
	if err := auth.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	_, refresh, err := auth.LoginUser(ctx, user.Email, "pw123456")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	access2, refresh2, err := auth.RefreshUser(ctx, refresh)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if access2 == "" || refresh2 == "" || refresh2 == refresh {
		t.Fatal("refresh did not rotate the token pair")
	}

	if _, _, err := auth.RefreshUser(ctx, refresh); err == nil {
		t.Fatal("old refresh token still accepted after rotation")
	}
}

func TestLogoutInvalidatesRefresh(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(t, env)
	ctx := context.Background()

	user := &types.User{Email: "logout@example.com", Password: "pw123456", FirstName: "Lo"}
	if err := auth.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	access, refresh, err := auth.LoginUser(ctx, user.Email, "pw123456")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	authedCtx, err := auth.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if err := auth.LogoutUser(authedCtx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	if _, _, err := auth.RefreshUser(ctx, refresh); err == nil {
		t.Fatal("refresh token survived logout")
	}

	if err := auth.LogoutUser(ctx); err == nil {
		t.Fatal("logout without request data accepted")
	}
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(t, env)

	for _, token := range []string{"", "not.a.jwt", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		if _, err := auth.SetContextFromToken(context.Background(), token); err == nil {
			t.Fatalf("token %q accepted", token)
		}
	}
}
