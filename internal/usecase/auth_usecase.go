package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// アクセストークンの発行
type TokenIssuer interface {
	Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error)
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginResult struct {
	User        UserDTO   `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type AuthUsecase struct {
	users  repository.UserRepository
	issuer TokenIssuer
	clock  Clock
	cost   int
}

func NewAuthUsecase(users repository.UserRepository, issuer TokenIssuer, clock Clock, bcryptCost int) *AuthUsecase {
	return &AuthUsecase{users: users, issuer: issuer, clock: clock, cost: bcryptCost}
}

func (u *AuthUsecase) Register(ctx context.Context, username string, password string) (UserDTO, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid input")
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(pwHash),
		Role:         model.RoleUser,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return UserDTO{}, ErrConflict
		}
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toUserDTO(user), nil
}

func (u *AuthUsecase) Login(ctx context.Context, username string, password string) (LoginResult, error) {
	user, err := u.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	tok, exp, err := u.issuer.Issue(user.ID, user.Role, u.clock.Now())
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginResult{User: toUserDTO(user), AccessToken: tok, ExpiresAt: exp}, nil
}

func (u *AuthUsecase) Me(ctx context.Context, id model.Identity) (UserDTO, error) {
	if !id.IsAuthenticated() {
		return UserDTO{}, ErrUnauthenticated
	}

	user, err := u.users.FindByID(ctx, id.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return UserDTO{}, ErrUnauthenticated
	}
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toUserDTO(user), nil
}

func toUserDTO(u *model.User) UserDTO {
	return UserDTO{ID: u.ID, Username: u.Username, Role: string(u.Role)}
}

// 起動時に管理者を用意する（既にいれば何もしない）
func (u *AuthUsecase) EnsureAdmin(ctx context.Context, username string, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	_, err := u.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return err
	}
	return u.users.Create(ctx, &model.User{
		Username:     username,
		PasswordHash: string(pwHash),
		Role:         model.RoleAdmin,
	})
}
