// Package fault normalizes identity-provider, document-store, and network
// failures into a closed set of user-facing messages with a reportability
// flag, so transport and UI collaborators never render raw backend errors.
package fault

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Details is the normalized error record. UserMessage is safe for display;
// Message is the internal description forwarded to diagnostics.
type Details struct {
	Code         string
	Message      string
	UserMessage  string
	ShouldReport bool
}

// BackendError carries a provider or store error code across the usecase
// boundary. Code uses the provider's own namespace (auth/*, document-store
// codes, or the NETWORK_ERROR family).
type BackendError struct {
	Code    string
	Message string
	Err     error
}

// Error implements error.
func (e *BackendError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// Unwrap exposes the underlying cause.
func (e *BackendError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewBackendError builds a BackendError for the given code and cause.
func NewBackendError(code, message string, err error) *BackendError {
	return &BackendError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the backend error code from err, or "".
func CodeOf(err error) string {
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Code
	}
	return ""
}

// Reporter forwards reportable faults to an external diagnostics sink.
type Reporter interface {
	Report(ctx context.Context, details Details, original error)
}

// identity-provider code table. Static and hand-authored; unmapped auth/*
// codes fall through to the unknown entry.
var authCodeTable = map[string]Details{
	"auth/user-not-found": {
		Code:         "auth/user-not-found",
		Message:      "No user record found",
		UserMessage:  "No account found with this email address. Please check your email or create a new account.",
		ShouldReport: false,
	},
	"auth/wrong-password": {
		Code:         "auth/wrong-password",
		Message:      "Incorrect password",
		UserMessage:  "Incorrect password. Please try again or reset your password.",
		ShouldReport: false,
	},
	"auth/invalid-email": {
		Code:         "auth/invalid-email",
		Message:      "Invalid email address",
		UserMessage:  "Please enter a valid email address.",
		ShouldReport: false,
	},
	"auth/user-disabled": {
		Code:         "auth/user-disabled",
		Message:      "User account disabled",
		UserMessage:  "This account has been disabled. Please contact support for assistance.",
		ShouldReport: true,
	},
	"auth/too-many-requests": {
		Code:         "auth/too-many-requests",
		Message:      "Too many failed attempts",
		UserMessage:  "Too many failed attempts. Please wait a few minutes before trying again.",
		ShouldReport: false,
	},
	"auth/email-already-in-use": {
		Code:         "auth/email-already-in-use",
		Message:      "Email already in use",
		UserMessage:  "An account with this email already exists. Please try logging in instead.",
		ShouldReport: false,
	},
	"auth/weak-password": {
		Code:         "auth/weak-password",
		Message:      "Password is too weak",
		UserMessage:  "Please choose a stronger password with at least 6 characters.",
		ShouldReport: false,
	},
	"auth/network-request-failed": {
		Code:         "auth/network-request-failed",
		Message:      "Network request failed",
		UserMessage:  "Network error. Please check your internet connection and try again.",
		ShouldReport: false,
	},
	"auth/invalid-credential": {
		Code:         "auth/invalid-credential",
		Message:      "Invalid credentials",
		UserMessage:  "Invalid credentials. Please check your email and password.",
		ShouldReport: false,
	},
	"auth/requires-recent-login": {
		Code:         "auth/requires-recent-login",
		Message:      "Recent login required",
		UserMessage:  "For security reasons, please log in again to continue.",
		ShouldReport: false,
	},
	"auth/operation-not-allowed": {
		Code:         "auth/operation-not-allowed",
		Message:      "Operation not allowed",
		UserMessage:  "This operation is not allowed. Please contact support.",
		ShouldReport: true,
	},
}

// document-store code table.
var storeCodeTable = map[string]Details{
	"permission-denied": {
		Code:         "permission-denied",
		Message:      "Permission denied",
		UserMessage:  "You do not have permission to perform this action.",
		ShouldReport: true,
	},
	"not-found": {
		Code:         "not-found",
		Message:      "Document not found",
		UserMessage:  "The requested information could not be found.",
		ShouldReport: false,
	},
	"already-exists": {
		Code:         "already-exists",
		Message:      "Document already exists",
		UserMessage:  "This information already exists in our system.",
		ShouldReport: false,
	},
	"resource-exhausted": {
		Code:         "resource-exhausted",
		Message:      "Resource exhausted",
		UserMessage:  "Service is temporarily unavailable. Please try again later.",
		ShouldReport: true,
	},
	"failed-precondition": {
		Code:         "failed-precondition",
		Message:      "Failed precondition",
		UserMessage:  "Unable to complete this action. Please try again.",
		ShouldReport: false,
	},
	"aborted": {
		Code:         "aborted",
		Message:      "Operation aborted",
		UserMessage:  "Operation was interrupted. Please try again.",
		ShouldReport: false,
	},
	"out-of-range": {
		Code:         "out-of-range",
		Message:      "Out of range",
		UserMessage:  "Invalid input provided. Please check your data.",
		ShouldReport: false,
	},
	"unimplemented": {
		Code:         "unimplemented",
		Message:      "Unimplemented",
		UserMessage:  "This feature is not available yet.",
		ShouldReport: true,
	},
	"internal": {
		Code:         "internal",
		Message:      "Internal server error",
		UserMessage:  "An unexpected error occurred. Please try again later.",
		ShouldReport: true,
	},
	"unavailable": {
		Code:         "unavailable",
		Message:      "Service unavailable",
		UserMessage:  "Service is temporarily unavailable. Please try again later.",
		ShouldReport: true,
	},
	"data-loss": {
		Code:         "data-loss",
		Message:      "Data loss",
		UserMessage:  "A data error occurred. Please contact support immediately.",
		ShouldReport: true,
	},
	"unauthenticated": {
		Code:         "unauthenticated",
		Message:      "Unauthenticated",
		UserMessage:  "Please log in to continue.",
		ShouldReport: false,
	},
}

// network faults detected from message text when no code survived.
var networkCodeTable = map[string]Details{
	"NETWORK_ERROR": {
		Code:         "NETWORK_ERROR",
		Message:      "Network connection error",
		UserMessage:  "Please check your internet connection and try again.",
		ShouldReport: false,
	},
	"TIMEOUT_ERROR": {
		Code:         "TIMEOUT_ERROR",
		Message:      "Request timeout",
		UserMessage:  "The request timed out. Please try again.",
		ShouldReport: false,
	},
	"CONNECTION_ERROR": {
		Code:         "CONNECTION_ERROR",
		Message:      "Connection error",
		UserMessage:  "Unable to connect to the server. Please try again.",
		ShouldReport: false,
	},
}

// Classify maps an error onto its normalized Details. Dispatch order:
// identity-provider codes, then document-store codes, then network text
// matching, then unmapped backend codes, then the unknown fallback.
// Classification is pure: the same error always yields the same Details.
func Classify(err error) Details {
	if err == nil {
		return unknownDetails("")
	}

	code := CodeOf(err)

	if strings.HasPrefix(code, "auth/") {
		if mapped, ok := authCodeTable[code]; ok {
			return mapped
		}
	}

	if mapped, ok := storeCodeTable[code]; ok {
		return mapped
	}

	message := strings.ToLower(err.Error())
	if strings.Contains(message, "network") || strings.Contains(message, "connection") {
		return networkCodeTable["NETWORK_ERROR"]
	}
	if strings.Contains(message, "timeout") {
		return networkCodeTable["TIMEOUT_ERROR"]
	}

	// A backend error with a code nothing recognizes is a contract drift
	// worth reporting, but still gets the generic retry message.
	if code != "" {
		return Details{
			Code:         code,
			Message:      err.Error(),
			UserMessage:  "An unexpected error occurred. Please try again.",
			ShouldReport: true,
		}
	}

	return unknownDetails(err.Error())
}

func unknownDetails(message string) Details {
	if message == "" {
		message = "Unknown error occurred"
	}
	return Details{
		Code:         "UNKNOWN_ERROR",
		Message:      message,
		UserMessage:  "An unexpected error occurred. Please try again later.",
		ShouldReport: true,
	}
}

// UserMessage shortcut returning only the display message.
func UserMessage(err error) string {
	return Classify(err).UserMessage
}

var retryableCodes = map[string]struct{}{
	"auth/network-request-failed": {},
	"auth/too-many-requests":      {},
	"unavailable":                 {},
	"aborted":                     {},
	"NETWORK_ERROR":               {},
	"TIMEOUT_ERROR":               {},
	"CONNECTION_ERROR":            {},
}

// IsRetryable reports whether the fault is worth an automatic retry prompt.
func IsRetryable(err error) bool {
	_, ok := retryableCodes[Classify(err).Code]
	return ok
}
