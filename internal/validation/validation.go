// Package validation holds the pure form validators run ahead of any auth or
// profile operation. Nothing in here touches the network; a form that fails
// validation never reaches the backend clients.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Result reports the outcome of a single validator.
type Result struct {
	IsValid bool
	Errors  []string
}

func resultOf(errs []string) Result {
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

var (
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern        = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	multiSpacePattern  = regexp.MustCompile(`\s{2,}`)
	repeatRunPattern   = regexp.MustCompile(`(.)\1{2,}`)
	keyboardRunPattern = regexp.MustCompile(`(?i)123|abc|qwe|asd`)

	lowercasePattern = regexp.MustCompile(`[a-z]`)
	uppercasePattern = regexp.MustCompile(`[A-Z]`)
	digitPattern     = regexp.MustCompile(`\d`)
	specialPattern   = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// commonPasswords is the fixed deny list checked case-insensitively.
var commonPasswords = []string{
	"password", "123456", "123456789", "qwerty", "abc123",
	"password123", "admin", "welcome", "login", "guest",
}

// ValidateEmail checks presence, basic shape, and the usual dot mistakes.
func ValidateEmail(email string) Result {
	var errs []string

	if strings.TrimSpace(email) == "" {
		return resultOf([]string{"Email is required"})
	}

	trimmed := strings.TrimSpace(email)
	if !emailPattern.MatchString(trimmed) {
		errs = append(errs, "Please enter a valid email address")
	}
	if strings.Contains(trimmed, "..") {
		errs = append(errs, "Email cannot contain consecutive dots")
	}
	if strings.HasPrefix(trimmed, ".") || strings.HasSuffix(trimmed, ".") {
		errs = append(errs, "Email cannot start or end with a dot")
	}

	return resultOf(errs)
}

// ValidatePassword enforces the basic password policy: length bounds plus the
// common-password deny list.
func ValidatePassword(password string) Result {
	var errs []string

	if password == "" {
		return resultOf([]string{"Password is required"})
	}

	if len(password) < 6 {
		errs = append(errs, "Password must be at least 6 characters long")
	}
	if len(password) > 128 {
		errs = append(errs, "Password must be less than 128 characters")
	}

	lowered := strings.ToLower(password)
	for _, common := range commonPasswords {
		if lowered == common {
			errs = append(errs, "Please choose a more secure password")
			break
		}
	}

	return resultOf(errs)
}

// PasswordStrength captures the strength score and the signals behind it.
// Score runs 0 (very weak) to 4 (strong).
type PasswordStrength struct {
	Score           int
	Feedback        []string
	HasLowercase    bool
	HasUppercase    bool
	HasNumbers      bool
	HasSpecialChars bool
	HasMinLength    bool
}

// CheckPasswordStrength scores a password independently of ValidatePassword.
// One point per character-class signal and for length >= 8; bonus points at
// 12 and 16 characters; deductions for repeated runs and keyboard patterns.
func CheckPasswordStrength(password string) PasswordStrength {
	strength := PasswordStrength{
		HasLowercase:    lowercasePattern.MatchString(password),
		HasUppercase:    uppercasePattern.MatchString(password),
		HasNumbers:      digitPattern.MatchString(password),
		HasSpecialChars: specialPattern.MatchString(password),
		HasMinLength:    len(password) >= 8,
	}

	if len(password) < 6 {
		strength.Feedback = []string{"Password must be at least 6 characters"}
		return strength
	}

	score := 0
	if strength.HasMinLength {
		score++
	}
	if strength.HasLowercase {
		score++
	}
	if strength.HasUppercase {
		score++
	}
	if strength.HasNumbers {
		score++
	}
	if strength.HasSpecialChars {
		score++
	}

	if !strength.HasMinLength {
		strength.Feedback = append(strength.Feedback, "Use at least 8 characters")
	}
	if !strength.HasLowercase {
		strength.Feedback = append(strength.Feedback, "Add lowercase letters")
	}
	if !strength.HasUppercase {
		strength.Feedback = append(strength.Feedback, "Add uppercase letters")
	}
	if !strength.HasNumbers {
		strength.Feedback = append(strength.Feedback, "Add numbers")
	}
	if !strength.HasSpecialChars {
		strength.Feedback = append(strength.Feedback, "Add special characters")
	}

	if len(password) >= 12 && score < 4 {
		score++
	}
	if len(password) >= 16 && score < 4 {
		score++
	}

	if repeatRunPattern.MatchString(password) {
		if score > 0 {
			score--
		}
		strength.Feedback = append(strength.Feedback, "Avoid repeating characters")
	}
	if keyboardRunPattern.MatchString(password) {
		if score > 0 {
			score--
		}
		strength.Feedback = append(strength.Feedback, "Avoid common patterns")
	}

	if score > 4 {
		score = 4
	}
	strength.Score = score

	return strength
}

// ValidateName checks a person-name field. fieldName customizes the messages.
func ValidateName(name, fieldName string) Result {
	if fieldName == "" {
		fieldName = "Name"
	}

	if strings.TrimSpace(name) == "" {
		return resultOf([]string{fmt.Sprintf("%s is required", fieldName)})
	}

	trimmed := strings.TrimSpace(name)
	var errs []string

	if len(trimmed) < 2 {
		errs = append(errs, fmt.Sprintf("%s must be at least 2 characters long", fieldName))
	}
	if len(trimmed) > 50 {
		errs = append(errs, fmt.Sprintf("%s must be less than 50 characters", fieldName))
	}
	if !namePattern.MatchString(trimmed) {
		errs = append(errs, fmt.Sprintf("%s can only contain letters, spaces, hyphens, and apostrophes", fieldName))
	}
	if multiSpacePattern.MatchString(trimmed) {
		errs = append(errs, fmt.Sprintf("%s cannot contain multiple consecutive spaces", fieldName))
	}

	return resultOf(errs)
}

// ValidatePasswordConfirmation requires the confirmation to match exactly.
func ValidatePasswordConfirmation(password, confirmPassword string) Result {
	if confirmPassword == "" {
		return resultOf([]string{"Please confirm your password"})
	}
	if password != confirmPassword {
		return resultOf([]string{"Passwords do not match"})
	}
	return resultOf(nil)
}

// ValidateRegistrationForm aggregates the field validators in display order.
func ValidateRegistrationForm(firstName, lastName, email, password, confirmPassword string) Result {
	var errs []string
	errs = append(errs, ValidateName(firstName, "First name").Errors...)
	errs = append(errs, ValidateName(lastName, "Last name").Errors...)
	errs = append(errs, ValidateEmail(email).Errors...)
	errs = append(errs, ValidatePassword(password).Errors...)
	errs = append(errs, ValidatePasswordConfirmation(password, confirmPassword).Errors...)
	return resultOf(errs)
}

// ValidateLoginForm checks the email shape and password presence only; the
// full password policy applies at registration, not login.
func ValidateLoginForm(email, password string) Result {
	var errs []string
	errs = append(errs, ValidateEmail(email).Errors...)
	if strings.TrimSpace(password) == "" {
		errs = append(errs, "Password is required")
	}
	return resultOf(errs)
}

// FormatErrorMessage joins validation errors into one display sentence.
func FormatErrorMessage(errs []string) string {
	switch len(errs) {
	case 0:
		return ""
	case 1:
		return errs[0]
	}
	return strings.Join(errs[:len(errs)-1], ", ") + ", and " + errs[len(errs)-1]
}

// PasswordStrengthLabel renders the score as a display label.
func PasswordStrengthLabel(score int) string {
	switch score {
	case 0, 1:
		return "Very Weak"
	case 2:
		return "Weak"
	case 3:
		return "Good"
	case 4:
		return "Strong"
	default:
		return "Unknown"
	}
}
