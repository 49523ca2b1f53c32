package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Dataset Errors (DATA001-DATA099)
//
//	DATA001 - Dataset not found: The active dataset could not be opened
//	          Action: Upload the file again or reset to the sample dataset
//	          Patterns: "dataset not found"
//
//	DATA002 - Page not found
//	          Action: Check the address or return to the dashboard
//	          Patterns: "page not found"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Missing column: Required column is missing from CSV
//	         Action: Include region, year, case_type and status columns
//	         Patterns: "missing required column"
//
//	VAL002 - Invalid year: A year value is not a whole number
//	         Action: Use four-digit years such as 2021
//	         Patterns: "invalid year"
//
//	VAL003 - Column not found: A filter refers to a column the dataset lacks
//	         Action: Clear the filters or upload a complete dataset
//	         Patterns: "column not found"
//
//	VAL004 - Invalid parameter: A request parameter could not be understood
//	         Action: Check the page number and filter values
//	         Patterns: "invalid parameter"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds maximum size limit
//	FILE002 - Invalid CSV: File is not a valid CSV
//	FILE003 - Wrong type: Only .csv files are accepted
//	FILE004 - Bad name: Filename has no usable characters
//	FILE005 - No file: No file was selected
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy: Too many uploads in progress
//	UPL002 - Request cancelled
//	UPL003 - Request timeout
//
// # Login Errors (AUTH001-AUTH099)
//
//	AUTH001 - Invalid credentials
//	AUTH002 - Login required
//	AUTH003 - Invalid API key (written by the API middleware)
//	AUTH004 - Admin role required (written by the API middleware)
//
// # Rate Limiting (RATE001)
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// Patterns are matched case-insensitively using strings.Contains and the first
// matching pattern wins, so more specific patterns come first.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Dataset Errors (DATA001-DATA002)
	// =========================================================================
	{
		pattern: "dataset not found",
		msg: UserMessage{
			Message: "The active dataset could not be opened",
			Action:  "Upload the file again or reset to the sample dataset",
			Code:    "DATA001",
		},
	},
	{
		pattern: "page not found",
		msg: UserMessage{
			Message: "Page not found",
			Action:  "Check the address or return to the dashboard",
			Code:    "DATA002",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL004)
	// =========================================================================
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from CSV",
			Action:  "Include region, year, case_type and status columns",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid year",
		msg: UserMessage{
			Message: "A year value is not a whole number",
			Action:  "Use four-digit years such as 2021",
			Code:    "VAL002",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "A filter refers to a column the dataset does not have",
			Action:  "Clear the filters or upload a complete dataset",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid parameter",
		msg: UserMessage{
			Message: "A request parameter could not be understood",
			Action:  "Check the page number and filter values",
			Code:    "VAL004",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with consistent columns",
			Code:    "FILE002",
		},
	},
	{
		pattern: "only csv allowed",
		msg: UserMessage{
			Message: "Invalid file type, only CSV allowed",
			Action:  "Save the file with a .csv extension",
			Code:    "FILE003",
		},
	},
	{
		pattern: "invalid filename",
		msg: UserMessage{
			Message: "The filename could not be used",
			Action:  "Rename the file using letters, digits, dashes or underscores",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to upload",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Upload Errors (UPL001-UPL003)
	// =========================================================================
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL003",
		},
	},

	// =========================================================================
	// Login Errors (AUTH001-AUTH002)
	// =========================================================================
	{
		pattern: "invalid username or password",
		msg: UserMessage{
			Message: "Invalid username or password",
			Action:  "Check your credentials and try again",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "login required",
		msg: UserMessage{
			Message: "Please log in to continue",
			Action:  "Sign in with your dashboard account",
			Code:    "AUTH002",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := &NotFoundError{Identifier: "uploads/x.csv"}
//	msg := MapError(err)
//	// msg.Code == "DATA001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}
