package domain

import "errors"

var (
	ErrJobNotFound        = errors.New("job not found or expired")
	ErrForbidden          = errors.New("you are not the owner of this job")
	ErrRoleNotAllowed     = errors.New("your role is not allowed to perform this action")
	ErrAlreadyInterested  = errors.New("you have already expressed interest in this job")
	ErrJobExpired         = errors.New("job has expired and can no longer be edited")
	ErrInvalidPagination  = errors.New("page must be at least 1 and size must be between 1 and the maximum page size")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid or expired token")
)
