package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserAlreadyExists   = errors.New("username already exists")
	ErrTokenInvalid        = errors.New("token is invalid or expired")
	ErrForbidden           = errors.New("not allowed to access this resource")
	ErrPropertyNotApproved = errors.New("property is not approved for booking")
	ErrInvalidInput        = errors.New("invalid input")
)
