package dto

import "strings"

// -------- Signup / login --------

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=100"`
}

func (r *SignupRequest) Normalize() {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

func (r *SignupRequest) Validate() error {
	r.Normalize()
	return validateRequest(r)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return validateRequest(r)
}

// -------- Email verification --------

// Code is the 6-digit code the verification mail carries.
type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

func (r *VerifyEmailRequest) Validate() error {
	r.Code = strings.TrimSpace(r.Code)
	return validateRequest(r)
}

// -------- Password reset --------

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	return validateRequest(r)
}

// The reset token itself travels in the URL path, not the body.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

func (r *ResetPasswordRequest) Validate() error {
	return validateRequest(r)
}
