package model

import "time"

type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	AvatarURL  string     `json:"avatar_url"`
	CreatedAt  time.Time  `json:"created_at"`
	LastActive *time.Time `json:"last_active"`
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// UpdateProfileRequest applies only the fields that are set.
type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

func (r UpdateProfileRequest) Empty() bool {
	return r.Name == nil && r.Phone == nil && r.AvatarURL == nil
}
