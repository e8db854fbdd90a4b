package dto

import "github.com/hongminglow/skillpath-be/internal/models"

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type OAuthStartResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

type SettingsRequest struct {
	DisplayName string `json:"displayName"`
}
