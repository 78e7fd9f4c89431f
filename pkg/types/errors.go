package types

import "errors"

var (
	ErrDonorNotFound        = errors.New("donor not found")
	ErrDirectoryUnavailable = errors.New("donor directory unavailable")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidBloodType     = errors.New("invalid blood type")
)
