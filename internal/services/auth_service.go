package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hq040506/DL-student-assistant/internal/apis/dtos"
	"github.com/hq040506/DL-student-assistant/internal/models"
	"github.com/hq040506/DL-student-assistant/internal/repositories"
	"github.com/hq040506/DL-student-assistant/internal/utils"
)

type AuthService interface {
	Signup(ctx context.Context, req *dtos.SignupRequest) (*dtos.AuthResponse, uint32, error)
	Login(ctx context.Context, req *dtos.LoginRequest) (*dtos.AuthResponse, uint32, error)
	GetUser(ctx context.Context, userID string) (*dtos.UserResponse, uint32, error)
}

type authService struct {
	userRepo   repositories.UserRepository
	jwtService utils.JWTService
}

func NewAuthService(userRepo repositories.UserRepository, jwtService utils.JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

func (s *authService) Signup(ctx context.Context, req *dtos.SignupRequest) (*dtos.AuthResponse, uint32, error) {
	username := strings.TrimSpace(req.Username)

	// Check if user exists
	existingUser, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to look up user: %v", err)
	}
	if existingUser != nil {
		return nil, http.StatusBadRequest, errors.New("username already exists")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	user := models.NewUser(username, hashedPassword)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to create user: %v", err)
	}
	log.Printf("AuthService -> Signup -> user %s created", user.ID.Hex())

	return s.authResponse(user, http.StatusCreated)
}

func (s *authService) Login(ctx context.Context, req *dtos.LoginRequest) (*dtos.AuthResponse, uint32, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to look up user: %v", err)
	}
	if user == nil {
		return nil, http.StatusUnauthorized, errors.New("invalid credentials")
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		return nil, http.StatusUnauthorized, errors.New("invalid credentials")
	}

	return s.authResponse(user, http.StatusOK)
}

func (s *authService) GetUser(ctx context.Context, userID string) (*dtos.UserResponse, uint32, error) {
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid user ID format")
	}

	user, err := s.userRepo.FindByID(ctx, userObjID)
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to fetch user: %v", err)
	}
	if user == nil {
		return nil, http.StatusNotFound, errors.New("user not found")
	}
	resp := toUserResponse(user)
	return &resp, http.StatusOK, nil
}

func (s *authService) authResponse(user *models.User, status uint32) (*dtos.AuthResponse, uint32, error) {
	accessToken, err := s.jwtService.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("failed to issue token: %v", err)
	}
	return &dtos.AuthResponse{
		AccessToken: accessToken,
		User:        toUserResponse(user),
	}, status, nil
}

func toUserResponse(user *models.User) dtos.UserResponse {
	return dtos.UserResponse{
		ID:        user.ID.Hex(),
		Username:  user.Username,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
