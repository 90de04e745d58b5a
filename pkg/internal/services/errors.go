package services

import "errors"

var (
	// ErrIdentityRequired rejects vote operations missing either half of the
	// anonymous identity pair before anything touches the store.
	ErrIdentityRequired = errors.New("voter token and fingerprint are required")

	ErrPollNotFound  = errors.New("poll not found")
	ErrPollClosed    = errors.New("poll has been ended")
	ErrInvalidOption = errors.New("poll does not have an option like that")
	ErrAlreadyVoted  = errors.New("you have already voted in this poll")

	ErrRoomCodeExhausted = errors.New("unable to allocate an unused room code")
)
