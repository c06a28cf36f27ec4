package domain

import "errors"

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrEditConflict       = errors.New("edit conflict")
	ErrSeatsAlreadyLocked = errors.New("some seats are temporarily locked")
	ErrSeatsAlreadyBooked = errors.New("some seats are already booked")
)
