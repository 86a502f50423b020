package models

import "time"

type Patient struct {
	ID                    string    `json:"id"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	DateOfBirth           time.Time `json:"date_of_birth"`
	Gender                string    `json:"gender,omitempty"`
	Email                 string    `json:"email"`
	PhoneNumber           string    `json:"phone_number,omitempty"`
	Address               string    `json:"address,omitempty"`
	EmergencyContact      string    `json:"emergency_contact,omitempty"`
	InsuranceProvider     string    `json:"insurance_provider,omitempty"`
	InsurancePolicyNumber string    `json:"insurance_policy_number,omitempty"`
	Revision              int64     `json:"revision"`
	RegistrationDate      time.Time `json:"registration_date"`
}
