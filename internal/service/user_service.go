package service

import (
	"errors"

	"go-catalog-ws/internal/model"
	"go-catalog-ws/internal/repository"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSelfModification = errors.New("administrators cannot demote or delete themselves")

// UserService is the admin side of account management. Registration and
// login live in AuthService.
type UserService interface {
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
	UpdateUserRole(userID uuid.UUID, req *UpdateRoleRequest, updaterID string) (*model.User, error)
	DeleteUser(userID uuid.UUID, deleterID string) error
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, user.ToResponse())
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, userNotFound(err)
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) UpdateUserRole(userID uuid.UUID, req *UpdateRoleRequest, updaterID string) (*model.User, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, userNotFound(err)
	}
	if user.ID.String() == updaterID && req.Role != model.RoleAdmin {
		return nil, ErrSelfModification
	}
	if user.Role == req.Role {
		return user, nil
	}

	user.Role = req.Role
	user.UpdatedBy = updaterID
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	log.Infof("User %s is now %s (changed by %s)", user.Email, user.Role, updaterID)
	return user, nil
}

func (s *userService) DeleteUser(userID uuid.UUID, deleterID string) error {
	if userID.String() == deleterID {
		return ErrSelfModification
	}
	return userNotFound(s.userRepo.Delete(userID, deleterID))
}

func userNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
