// Package core provides the settings-resolution engine for table views.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Error codes are grouped by category:
//
// # View Errors (VIEW001-VIEW099)
//
//	VIEW001 - View not found: The view session does not exist or has expired
//	          Action: Open the table again
//
//	VIEW002 - Too many views: The open view limit was reached
//	          Action: Close an open view and try again
//
//	VIEW003 - No saved settings: Nothing was saved under this name
//	          Action: Save the view first
//
//	VIEW004 - Settings mismatch: Saved settings belong to different columns
//	          Action: The table columns changed. Adjust and save the view again
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source not found
//	SRC002 - Source exists
//	SRC003 - Read-only source
//
// # Column Errors (COL001-COL099)
//
//	COL001 - Unknown column
//	COL002 - Invalid row
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Empty file
//	FILE003 - Invalid CSV
//	FILE004 - Unsupported format
//	FILE005 - No file
//	FILE006 - Upload busy
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused
//	DB002 - Connection reset
//	DB003 - Relation missing
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	REQ002 - Request timeout
//	REQ003 - Bad request
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Errors are matched against the sentinel errors of this package and the
// context package with errors.Is. Errors that lost their wrapping (text
// passed through a driver or another process) are matched by substring,
// case-insensitively, against the sentinel's text or the entry's pattern.
// The first matching entry wins.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorEntry maps a sentinel or a text pattern to a user message.
type errorEntry struct {
	target  error
	pattern string
	msg     UserMessage
}

func (e errorEntry) text() string {
	if e.pattern != "" {
		return e.pattern
	}
	return e.target.Error()
}

func matchErr(target error, code, message, action string) errorEntry {
	return errorEntry{target: target, msg: UserMessage{Message: message, Action: action, Code: code}}
}

func matchText(pattern, code, message, action string) errorEntry {
	return errorEntry{pattern: pattern, msg: UserMessage{Message: message, Action: action, Code: code}}
}

var errorEntries = []errorEntry{
	matchErr(ErrViewNotFound, "VIEW001", "The view does not exist or has expired", "Open the table again"),
	matchErr(ErrTooManyViews, "VIEW002", "Too many views are open", "Close an open view and try again"),
	matchErr(ErrSettingsNotFound, "VIEW003", "No view was saved under this name", "Save the view first"),
	matchErr(ErrSchemaMismatch, "VIEW004", "Saved settings belong to different columns",
		"The table columns changed. Adjust and save the view again"),

	matchErr(ErrSourceNotFound, "SRC001", "Data source not found", "Check the source name or upload the file again"),
	matchErr(ErrSourceExists, "SRC002", "A data source with this name already exists", "Choose a different name"),
	matchErr(ErrReadOnly, "SRC003", "This data source cannot be edited", "Edits require a table with key columns"),

	matchErr(ErrUnknownColumn, "COL001", "Column not found", "Verify the column exists in this table"),
	matchErr(ErrInvalidRow, "COL002", "Row not found", "Refresh the view and try again"),

	matchErr(ErrFileTooLarge, "FILE001", "File exceeds maximum size limit", "Split the file into smaller chunks"),
	matchErr(ErrEmptyFile, "FILE002", "The uploaded file is empty", "Please upload a file with a header row"),
	matchErr(ErrNoHeaders, "FILE002", "The file has no header row", "Please upload a file with a header row"),
	matchErr(ErrRowWidth, "FILE003", "File is not a valid CSV",
		"Ensure every row has the same number of columns as the header"),
	matchText("parse error", "FILE003", "File is not a valid CSV",
		"Ensure file is comma-separated with consistent quoting"),
	matchErr(ErrUnsupportedFormat, "FILE004", "File format is not supported", "Upload a .csv or .parquet file"),
	matchErr(ErrNoFile, "FILE005", "No file was selected", "Please select a file to upload"),
	matchText("too many concurrent uploads", "FILE006", "The server is busy processing other uploads",
		"Wait a moment and upload again"),

	matchText("connection refused", "DB001", "Unable to connect to database", "Please try again in a few moments"),
	matchText("connection reset", "DB002", "Database connection was interrupted", "Please try again"),
	matchText("does not exist", "DB003", "Database table or column does not exist", "Check the DB_TABLES configuration"),

	matchErr(context.Canceled, "REQ001", "Request was cancelled", "Please try again"),
	matchErr(context.DeadlineExceeded, "REQ002", "Request timed out", "Try again or narrow the view"),
	matchErr(ErrBadRequest, "REQ003", "The request could not be read", "Check the request fields and try again"),
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(fmt.Errorf("open view: %w", ErrTooManyViews))
//	// msg.Code == "VIEW002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, e := range errorEntries {
		if e.target != nil && errors.Is(err, e.target) {
			return e.msg
		}
	}

	text := strings.ToLower(err.Error())
	for _, e := range errorEntries {
		if strings.Contains(text, e.text()) {
			return e.msg
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

// IsUserFacing reports whether an error matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
