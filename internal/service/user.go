package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

type UserService struct {
	userStore UserStore
	logger    *logrus.Logger
}

func NewUserService(userStore UserStore, logger *logrus.Logger) *UserService {
	return &UserService{userStore: userStore, logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	return s.userStore.FindByID(ctx, userID)
}

// UpdateProfile permite cambiar email y teléfono. El email nuevo debe
// seguir siendo único.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *model.UserUpdateRequest) (*model.User, error) {
	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != "" && req.Email != user.Email {
		if !model.ValidEmail(req.Email) {
			return nil, fmt.Errorf("formato de email inválido")
		}
		taken, err := s.userStore.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, model.ErrEmailTaken
		}
		user.Email = req.Email
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}

	if err := s.userStore.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	s.logger.WithField("user_id", userID).Info("Perfil actualizado")
	return user, nil
}

// ChangePassword exige la contraseña actual, que la confirmación coincida
// y que la nueva sea distinta de la vigente.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmationPassword {
		return model.ErrPasswordConfirmation
	}

	user, err := s.userStore.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return model.ErrInvalidCredentials
	}
	if req.NewPassword == req.CurrentPassword {
		return model.ErrSamePassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userStore.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		return err
	}

	s.logger.WithField("user_id", userID).Info("Contraseña actualizada")
	return nil
}
