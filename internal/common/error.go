package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrEmailTaken      = errors.New("email is already registered")
	ErrUsernameTaken   = errors.New("username is already taken")

	// Service-level errors.
	ErrorForbidden        = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Validation errors.
	ErrorValidation          = errors.New("validation error")
	ErrMissingCredentials    = errors.New("email and password are required")
	ErrInvalidEmailFormat    = errors.New("invalid email format")
	ErrInvalidPasswordFormat = errors.New("password must contain at least 8 characters, including one digit, one lowercase, and one uppercase letter")
	ErrSelfFollow            = errors.New("you can't follow yourself")
	ErrEmptyPost             = errors.New("post must have a photo or a description")
	ErrEmptyComment          = errors.New("comment text is required")
	ErrInvalidUpload         = errors.New("invalid upload")
	ErrUploadTooLarge        = errors.New("upload too large")

	// Auth errors.
	ErrMalformedAuthHeader = errors.New("malformed authorization header")
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
)
