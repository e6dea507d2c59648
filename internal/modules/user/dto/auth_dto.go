package dto

import (
	"anoa.com/bloodlink/internal/entity"
	"github.com/golang-jwt/jwt/v5"
)

type RegisterInput struct {
	Name            string `json:"name" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	Role            string `json:"role" binding:"required,oneof=donor doctor bank"`
	Phone           string `json:"phone" binding:"omitempty,max=30"`
	Location        string `json:"location" binding:"omitempty,max=255"`

	// donor only
	BloodGroup string `json:"blood_group" binding:"omitempty,bloodgroup"`
	Rhesus     string `json:"rhesus" binding:"omitempty,rhesus"`
	Sex        string `json:"sex" binding:"omitempty,oneof=male female"`
	BirthDate  string `json:"birth_date" binding:"omitempty,datetime=2006-01-02"`

	// doctor only
	Specialty string `json:"specialty" binding:"omitempty,max=100"`
	Grade     string `json:"grade" binding:"omitempty,max=50"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *entity.User `json:"user"`
}

// Claims are the session token claims. ID carries the jti used for revocation.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
