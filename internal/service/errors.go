package service

import "errors"

var (
	ErrValidation         = errors.New("validation")          // 400
	ErrNotFound           = errors.New("not found")           // 404
	ErrInsufficientStock  = errors.New("insufficient stock")  // 409
	ErrEmptyCart          = errors.New("cart is empty")       // 400
	ErrConflict           = errors.New("conflict")            // 409
	ErrInvalidCredentials = errors.New("invalid credentials") // 401
)
