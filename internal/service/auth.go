package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Smarty6452/hbros-platform/backend/internal/domain"
)

type AuthClaims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

type LoginResult struct {
	Token string      `json:"token"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

type Auth struct {
	users      UserStore
	mail       MailPublisher
	secret     []byte
	expiration time.Duration
	now        Clock
}

func NewAuth(users UserStore, mail MailPublisher, secret string, expiration time.Duration, now Clock) *Auth {
	if now == nil {
		now = utcNow
	}
	return &Auth{
		users:      users,
		mail:       mail,
		secret:     []byte(secret),
		expiration: expiration,
		now:        now,
	}
}

// Register 创建用户，欢迎邮件投递失败不影响注册结果
func (s *Auth) Register(ctx context.Context, params RegisterParams) (*domain.User, error) {
	if !params.Role.Valid() {
		return nil, domain.ErrRoleNotAllowed
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        params.Email,
		Name:         params.Name,
		PasswordHash: string(passwordHash),
		Role:         params.Role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.mail != nil {
		msg := &domain.MailMessage{
			Type: domain.MailTypeWelcome,
			To:   user.Email,
			Data: domain.WelcomeMailData{Name: user.Name, Role: user.Role},
		}
		if err := s.mail.PublishMail(ctx, msg); err != nil {
			slog.Warn("欢迎邮件投递失败", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

// Login 对不存在的邮箱和错误的密码返回同一个错误
func (s *Auth) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		Name:  user.Name,
		Role:  user.Role,
	}, nil
}

func (s *Auth) IssueToken(user *domain.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		Name: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(user.ID, 10),
		},
	})

	ss, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return ss, nil
}

// ParseToken 校验令牌并构造请求发起者
func (s *Auth) ParseToken(tokenString string) (domain.Caller, error) {
	claims := &AuthClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.Caller{}, domain.ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return domain.Caller{}, domain.ErrInvalidToken
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.Caller{}, domain.ErrInvalidToken
	}

	return domain.Caller{ID: id, Role: role, Name: claims.Name}, nil
}
