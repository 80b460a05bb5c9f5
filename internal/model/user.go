package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// User represents a user in the database.
type User struct {
	ID        int64
	Name      string
	Email     string
	Phone     int64
	Password  string // bcrypt digest, never plaintext
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Address represents one postal address row owned by a user.
type Address struct {
	ID        int64
	UserID    int64
	Street    string
	City      string
	State     string
	Zip       string
	Country   string
	CreatedAt time.Time
}

// PhoneInput is a phone number as sent by clients. Both JSON strings and
// bare JSON numbers are accepted; the raw digits are kept for validation.
type PhoneInput string

var errInvalidPhone = errors.New("phone must be a string or a number")

// UnmarshalJSON accepts "1234567890" as well as 1234567890.
func (p *PhoneInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = PhoneInput(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errInvalidPhone
	}
	*p = PhoneInput(n.String())
	return nil
}

// Int64 parses the phone digits into the stored numeric form.
func (p PhoneInput) Int64() (int64, error) {
	return strconv.ParseInt(string(p), 10, 64)
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Phone    PhoneInput `json:"phone"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdateRequest carries the address fields of a profile update.
type ProfileUpdateRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// AddressResponse is the public shape of an address.
type AddressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// ProfileResponse represents user data safe for API responses (no password).
// Phone is rendered as a string so 64-bit values survive JavaScript clients.
type ProfileResponse struct {
	ID      int64             `json:"id"`
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Phone   string            `json:"phone"`
	Address []AddressResponse `json:"address"`
}

// MessageResponse is the {"message": "..."} body used by most endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}
