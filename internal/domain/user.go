package domain

import "time"

// User types. Companies are restricted to donation posts.
const (
	UserTypePerson  = "person"
	UserTypeCompany = "company"
)

// Coordinates is a geographic point attached to users and posts.
type Coordinates struct {
	Latitude  float64 `json:"latitude" dynamodbav:"latitude"`
	Longitude float64 `json:"longitude" dynamodbav:"longitude"`
}

// Location is a free-form address plus optional coordinates.
type Location struct {
	Address     string       `json:"address,omitempty" dynamodbav:"address"`
	Coordinates *Coordinates `json:"coordinates,omitempty" dynamodbav:"coordinates"`
}

type User struct {
	UserID       string    `json:"id" dynamodbav:"user_id"`
	UserType     string    `json:"userType" dynamodbav:"user_type"` // "person" | "company"
	Name         string    `json:"name" dynamodbav:"name"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	Phone        *string   `json:"phone,omitempty" dynamodbav:"phone"`
	CPF          *string   `json:"-" dynamodbav:"cpf"`
	CNPJ         *string   `json:"-" dynamodbav:"cnpj"`
	ProfileImage *string   `json:"profileImage,omitempty" dynamodbav:"profile_image"`
	Location     *Location `json:"location,omitempty" dynamodbav:"location"`
	Points       int       `json:"points" dynamodbav:"points"`
	IsVerified   bool      `json:"isVerified" dynamodbav:"is_verified"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// RegisterRequest is the payload for the code-verified registration endpoint.
type RegisterRequest struct {
	UserType         string  `json:"userType" validate:"required"`
	Name             string  `json:"name" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	Password         string  `json:"password" validate:"required,min=6,max=72"`
	Phone            *string `json:"phone"`
	CPF              *string `json:"cpf"`
	CNPJ             *string `json:"cnpj"`
	VerificationCode string  `json:"verificationCode" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries the mutable profile fields. ProfileImage may be
// a base64 payload, in which case it is uploaded to object storage first.
type UpdateProfileRequest struct {
	Name         string    `json:"name" validate:"required"`
	Phone        *string   `json:"phone"`
	ProfileImage *string   `json:"profileImage"`
	Location     *Location `json:"location"`
}
