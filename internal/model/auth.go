package model

type RegisterRequest struct {
	Name             string   `json:"name" validate:"required,max=120"`
	Email            string   `json:"email" validate:"required,email"`
	Password         string   `json:"password" validate:"required,min=8"`
	Phone            string   `json:"phone" validate:"required,max=32"`
	Role             Role     `json:"role" validate:"omitempty,oneof=customer provider"`
	City             string   `json:"city" validate:"max=120"`
	ServiceLocations []string `json:"serviceLocations" validate:"dive,required,max=120"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
