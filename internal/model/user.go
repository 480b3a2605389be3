package model

import (
	"fmt"
	"regexp"
	"time"
)

type Role string

const (
	RoleClient Role = "CLIENT"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID          int64     `json:"id" db:"id"`
	Role        Role      `json:"role" db:"role"`
	Name        string    `json:"name" db:"name"`
	LastName1   string    `json:"last_name1" db:"last_name1"`
	LastName2   string    `json:"last_name2,omitempty" db:"last_name2"`
	DocumentID  string    `json:"document_id" db:"document_id"`
	Email       string    `json:"email" db:"email"`
	Password    string    `json:"-" db:"password"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// FullName compone el nombre mostrado en listados administrativos.
func (u *User) FullName() string {
	return u.Name + " " + u.LastName1
}

type RegisterRequest struct {
	Name        string `json:"name"`
	LastName1   string `json:"last_name1"`
	LastName2   string `json:"last_name2"`
	DocumentID  string `json:"document_id"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Token  string `json:"token"`
}

type UserUpdateRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type ChangePasswordRequest struct {
	CurrentPassword      string `json:"current_password"`
	NewPassword          string `json:"new_password"`
	ConfirmationPassword string `json:"confirmation_password"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail indica si la cadena tiene formato de email.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func (r *RegisterRequest) Validate() error {
	if r.Name == "" || r.LastName1 == "" {
		return fmt.Errorf("el nombre y el primer apellido son obligatorios")
	}
	if r.DocumentID == "" {
		return fmt.Errorf("el documento de identidad es obligatorio")
	}
	if !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("formato de email inválido")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("la contraseña debe tener al menos 8 caracteres")
	}
	if r.PhoneNumber == "" {
		return fmt.Errorf("el número de teléfono es obligatorio")
	}
	return nil
}

func (r *LoginRequest) Validate() error {
	if !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("formato de email inválido")
	}
	if r.Password == "" {
		return fmt.Errorf("la contraseña es obligatoria")
	}
	return nil
}

func (r *ChangePasswordRequest) Validate() error {
	if r.CurrentPassword == "" {
		return fmt.Errorf("la contraseña actual es obligatoria")
	}
	if len(r.NewPassword) < 8 {
		return fmt.Errorf("la nueva contraseña debe tener al menos 8 caracteres")
	}
	return nil
}
