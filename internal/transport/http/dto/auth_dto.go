package dto

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK        bool      `json:"ok"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LogoutResponse struct {
	OK bool `json:"ok"`
}
