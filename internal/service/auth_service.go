package service

import (
	"errors"
	"strings"

	"go-catalog-ws/internal/model"
	"go-catalog-ws/internal/repository"
	"go-catalog-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("this email is already used")
)

type AuthService interface {
	Register(req *RegisterRequest) (*model.User, error)
	Login(email, password string) (*LoginResponse, error)
	LoginWithGitHub(profile *GitHubProfile) (*LoginResponse, error)
	CurrentUser(id uuid.UUID) (*model.User, error)
	ValidateToken(token string) (*jwt.Claims, error)
	EnsureAdmin(email, password string) error
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,notblank"`
	LastName  string `json:"last_name" validate:"required,notblank"`
	Email     string `json:"email" validate:"required,email"`
	Age       int    `json:"age" validate:"required,gt=0"`
	Password  string `json:"password" validate:"required,min=6"`
}

type LoginResponse struct {
	Token string             `json:"token"`
	User  model.UserResponse `json:"user"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Register(req *RegisterRequest) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate(req); err != nil {
		return nil, err
	}

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailExists
	}

	// Self registration never grants admin.
	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Age:       req.Age,
		Role:      model.RoleUser,
		Provider:  model.ProviderLocal,
	}
	user.CreatedBy = "self"
	user.UpdatedBy = "self"

	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// LoginWithGitHub signs in the account with the profile's email, creating it on first sight.
func (s *authService) LoginWithGitHub(profile *GitHubProfile) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, errors.New("github account has no public or verified email")
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if user == nil {
		name := profile.Name
		if name == "" {
			name = profile.Login
		}
		user = &model.User{
			FirstName: name,
			Email:     email,
			Role:      model.RoleUser,
			Provider:  model.ProviderGitHub,
		}
		user.CreatedBy = "github"
		user.UpdatedBy = "github"
		if err := s.userRepo.Create(user); err != nil {
			return nil, err
		}
		log.Infof("Created user %s from GitHub login %s", user.Email, profile.Login)
	}
	return s.issue(user)
}

func (s *authService) issue(user *model.User) (*LoginResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName(), user.Role)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &LoginResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *authService) CurrentUser(id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokens.ValidateToken(token)
}

// EnsureAdmin creates the bootstrap administrator if the email is not taken yet.
func (s *authService) EnsureAdmin(email, password string) error {
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := &model.User{
		FirstName: "Catalog",
		LastName:  "Administrator",
		Email:     email,
		Role:      model.RoleAdmin,
		Provider:  model.ProviderLocal,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := s.userRepo.Create(admin); err != nil {
		return err
	}
	log.Infof("Admin user created: %s", email)
	return nil
}
