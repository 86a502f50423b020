package store

import "errors"

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrRecordNotFound      = errors.New("medical record not found")
	ErrSlotTaken           = errors.New("time slot not available")
	ErrConcurrentUpdate    = errors.New("record modified concurrently")
	ErrDuplicateEmail      = errors.New("email already registered")
)
