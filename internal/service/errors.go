package service

import "errors"

// Ошибки бизнес-логики. Транспортный слой отображает их в HTTP-статусы,
// всё остальное считается временным сбоем хранилища.
var (
	ErrUnauthorized          = errors.New("operation not permitted for this user")
	ErrCourseNotFound        = errors.New("course not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrRuleNotFound          = errors.New("recurring rule not found")
	ErrInvalidPolicy         = errors.New("invalid booking policy")
	ErrSlotNoLongerAvailable = errors.New("slot is no longer available")
	ErrInsufficientCredits   = errors.New("insufficient credits")
)
