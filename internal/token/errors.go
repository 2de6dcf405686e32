package token

import "errors"

var (
	ErrMissingSigningKey = errors.New("token: missing signing key")
	ErrMalformed         = errors.New("token: malformed token")
	ErrSignatureInvalid  = errors.New("token: signature mismatch")
	ErrExpired           = errors.New("token: expired")
)
