package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/repos"
	"github.com/campfirehq/campfire-backend/internal/requestdata"
	"github.com/campfirehq/campfire-backend/internal/types"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	if user == nil {
		return fmt.Errorf("no user given, cannot register")
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" {
		return fmt.Errorf("an email is required to register")
	}
	if user.Password == "" {
		return fmt.Errorf("a password is required to register")
	}
	if user.FirstName == "" {
		return fmt.Errorf("a first name is required to register")
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return fmt.Errorf("failed to check user email: %w", err)
	}
	if exists {
		return fmt.Errorf("email is already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		user.Level = 1
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required")
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("error retrieving user by email: %w", err)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("invalid email or password")
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid email or password")
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); err != nil {
			return fmt.Errorf("failed to clear previous tokens: %w", err)
		}
		accessToken, refreshToken, err = as.issueTokens(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", fmt.Errorf("a refresh token is required")
	}

	row, err := as.userTokenRepo.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", fmt.Errorf("invalid refresh token")
		}
		return "", "", err
	}
	if row.ExpiresAt.Before(time.Now()) {
		return "", "", fmt.Errorf("refresh token expired")
	}

	var accessToken, newRefreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{row.UserID}); err != nil {
			return fmt.Errorf("failed to rotate refresh token: %w", err)
		}
		accessToken, newRefreshToken, err = as.issueTokens(ctx, tx, row.UserID)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("not authenticated")
	}
	return as.userTokenRepo.DeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ctx, fmt.Errorf("invalid token subject")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, fmt.Errorf("invalid token subject")
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (string, string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(as.accessTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken := uuid.NewString() + uuid.NewString()
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       userID,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(as.refreshTTL),
	}
	if err := as.userTokenRepo.Create(ctx, tx, row); err != nil {
		return "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return accessToken, refreshToken, nil
}
