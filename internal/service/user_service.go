package service

import (
	"context"
	"time"

	"asset-backend/internal/apperr"
	"asset-backend/internal/middleware"
	"asset-backend/internal/model"
	"asset-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// --- DTOs ---

type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	Role        string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at"`
}

// --- Interface ---

type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	GetUser(ctx context.Context, id string) (*UserResponse, error)
}

type userService struct {
	repo repository.UserRepository
	now  func() time.Time
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo, now: time.Now}
}

// --- Implementation ---

func validRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleApprover || role == model.RoleStaff
}

func toUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if !validRole(req.Role) {
		return nil, apperr.Validation("role must be admin, approver, or staff")
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Validation("email %s is already registered", req.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, err, "failed to hash password")
	}

	user := &model.User{
		ID:          uuid.New(),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    string(hashed),
		Role:        req.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Deliberately vague so the endpoint does not confirm which emails exist.
		return nil, apperr.Validation("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Validation("invalid email or password")
	}

	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"name": user.DisplayName,
		"role": user.Role,
		"exp":  s.now().Add(24 * time.Hour).Unix(),
		"iat":  s.now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, err, "failed to sign token")
	}
	return &TokenResponse{Token: signed}, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*UserResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid user id: %v", err)
	}
	user, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}
