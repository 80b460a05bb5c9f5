// Package validator checks the shape of incoming user payloads before any
// persistence logic runs. Every check returns the human-readable messages in
// field order; an empty slice means the payload is acceptable.
package validator

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/storefront/storefront-go/internal/model"
)

const (
	maxTextLength     = 255
	maxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
)

// At most 15 digits (E.164), so every accepted phone fits the BIGINT column.
var phoneRX = regexp.MustCompile(`^[0-9]{10,15}$`)

type field struct {
	value interface{}
	rules []validation.Rule
}

// UserRegistration validates a registration payload.
func UserRegistration(req model.RegisterRequest) []string {
	phone := string(req.Phone)
	return check(
		field{req.Name, []validation.Rule{
			validation.Required.Error("Name is required"),
			validation.RuneLength(1, maxTextLength).Error("Name must be at most 255 characters"),
		}},
		field{req.Email, []validation.Rule{
			validation.Required.Error("Email is required"),
			validation.RuneLength(1, maxTextLength).Error("Email must be at most 255 characters"),
			is.Email.Error("Invalid email address"),
		}},
		field{req.Password, []validation.Rule{
			validation.Required.Error("Password is required"),
			validation.Length(1, maxPasswordLength).Error("Password must be at most 72 characters"),
		}},
		field{phone, []validation.Rule{
			validation.Required.Error("Phone number is required"),
			validation.Match(phoneRX).Error("Phone number must be 10 to 15 digits"),
		}},
	)
}

// UserLogin validates a login payload.
func UserLogin(req model.LoginRequest) []string {
	return check(
		field{req.Email, []validation.Rule{
			validation.Required.Error("Email is required"),
			is.Email.Error("Invalid email address"),
		}},
		field{req.Password, []validation.Rule{
			validation.Required.Error("Password is required"),
		}},
	)
}

// UserProfile validates the address fields of a profile update.
func UserProfile(req model.ProfileUpdateRequest) []string {
	return check(
		addressField("Street", req.Street),
		addressField("City", req.City),
		addressField("State", req.State),
		addressField("Zip code", req.Zip),
		addressField("Country", req.Country),
	)
}

func addressField(label, value string) field {
	return field{value, []validation.Rule{
		validation.Required.Error(label + " is required"),
		validation.RuneLength(1, maxTextLength).Error(label + " must be at most 255 characters"),
	}}
}

// check runs each field's rules and collects the first failure per field.
func check(fields ...field) []string {
	messages := make([]string, 0, len(fields))
	for _, f := range fields {
		if err := validation.Validate(f.value, f.rules...); err != nil {
			messages = append(messages, err.Error())
		}
	}
	return messages
}
