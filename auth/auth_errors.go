package auth

import "errors"

var (
	ErrUnknownClient           = errors.New("unknown client")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidPassword         = errors.New("invalid password")
	ErrMissingClientID         = errors.New("client_id is required")
	ErrMissingRedirectURI      = errors.New("redirect_uri is required")
	ErrUnsupportedResponseType = errors.New("unsupported response type")
)
