package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

// Umbrales de bloqueo por intentos fallidos de acceso.
const (
	blockThreshold  = 3                // fallos consecutivos que bloquean la cuenta
	hardLockCount   = 5                // a partir de aquí solo desbloquea un administrador
	autoUnblockWait = 10 * time.Minute // espera para el desbloqueo automático
)

// Claims son los claims del token de sesión.
type Claims struct {
	UserID int64      `json:"user_id"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userStore    UserStore
	attemptStore LoginAttemptStore
	accounts     *AccountService
	audit        *AuditLogService
	jwtSecret    []byte
	tokenExpiry  time.Duration
	logger       *logrus.Logger
}

func NewAuthService(
	userStore UserStore,
	attemptStore LoginAttemptStore,
	accounts *AccountService,
	audit *AuditLogService,
	jwtSecret string,
	tokenExpiry time.Duration,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		userStore:    userStore,
		attemptStore: attemptStore,
		accounts:     accounts,
		audit:        audit,
		jwtSecret:    []byte(jwtSecret),
		tokenExpiry:  tokenExpiry,
		logger:       logger,
	}
}

// Register da de alta un cliente, crea su registro de intentos de acceso y
// le abre la cuenta inicial en soles.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Role:        model.RoleClient,
		Name:        req.Name,
		LastName1:   req.LastName1,
		LastName2:   req.LastName2,
		DocumentID:  req.DocumentID,
		Email:       req.Email,
		Password:    string(hashed),
		PhoneNumber: req.PhoneNumber,
		IsActive:    true,
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.attemptStore.Create(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("No se pudo crear el registro de intentos de acceso")
	}
	if _, err := s.accounts.CreateDefault(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("No se pudo crear la cuenta inicial del usuario")
	}

	s.logger.WithField("user_id", user.ID).Info("Usuario registrado")
	return s.buildAuthResponse(user)
}

// Login autentica al usuario y aplica la política de bloqueo: tres fallos
// consecutivos bloquean la cuenta; el bloqueo expira solo a los diez
// minutos salvo que los fallos lleguen a cinco, en cuyo caso solo un
// administrador puede desbloquear.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest, ipAddress, userAgent string) (*model.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userStore.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, model.ErrInvalidCredentials
	}

	attempt, err := s.attemptStore.FindByUserID(ctx, user.ID)
	if errors.Is(err, model.ErrUserNotFound) {
		// Usuarios dados de alta fuera del registro normal pueden no tener
		// registro de intentos: se crea aquí.
		if err := s.attemptStore.Create(ctx, user.ID); err != nil {
			return nil, err
		}
		attempt, err = s.attemptStore.FindByUserID(ctx, user.ID)
	}
	if err != nil {
		return nil, err
	}

	if attempt.IsBlocked {
		if !s.canAutoUnblock(attempt) {
			return nil, model.ErrUserBlocked
		}
		attempt.IsBlocked = false
		attempt.Attempts = 0
		s.logger.WithField("user_id", user.ID).Info("Bloqueo expirado, usuario desbloqueado automáticamente")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, s.registerFailure(ctx, user.ID, attempt)
	}

	attempt.Attempts = 0
	attempt.IsBlocked = false
	now := time.Now()
	attempt.LastAttempt = &now
	if err := s.attemptStore.Update(ctx, attempt); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("No se pudo reiniciar el contador de intentos")
	}

	s.audit.Log(user.ID, model.AuditActionLogin, "Inicio de sesión", ipAddress, userAgent)
	s.logger.WithField("user_id", user.ID).Info("Inicio de sesión correcto")
	return s.buildAuthResponse(user)
}

// ParseToken valida el token de sesión y devuelve sus claims.
func (s *AuthService) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) canAutoUnblock(attempt *model.LoginAttempt) bool {
	if attempt.Attempts >= hardLockCount {
		return false
	}
	if attempt.LastAttempt == nil {
		return false
	}
	return time.Since(*attempt.LastAttempt) >= autoUnblockWait
}

// registerFailure acumula el fallo y bloquea al llegar al umbral. Devuelve
// el error que el cliente debe ver.
func (s *AuthService) registerFailure(ctx context.Context, userID int64, attempt *model.LoginAttempt) error {
	attempt.Attempts++
	now := time.Now()
	attempt.LastAttempt = &now
	if attempt.Attempts >= blockThreshold {
		attempt.IsBlocked = true
	}

	if err := s.attemptStore.Update(ctx, attempt); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("No se pudo registrar el intento fallido")
	}

	if attempt.IsBlocked {
		s.logger.WithFields(logrus.Fields{
			"user_id":  userID,
			"attempts": attempt.Attempts,
		}).Warn("Usuario bloqueado por intentos fallidos")
		return model.ErrUserBlocked
	}
	return model.ErrInvalidCredentials
}

func (s *AuthService) buildAuthResponse(user *model.User) (*model.AuthResponse, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &model.AuthResponse{
		UserID: user.ID,
		Name:   user.FullName(),
		Email:  user.Email,
		Role:   user.Role,
		Token:  token,
	}, nil
}
