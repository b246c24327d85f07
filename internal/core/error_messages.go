package core

// error_messages.go maps technical errors to coded user messages.
//
// When users encounter errors, they can quote the code to the shop owner
// or support for faster diagnosis. Codes are grouped by category:
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Sheet has no data rows
//	SRC002 - Sheet has no name or price column
//	SRC003 - Sheet is too large
//	SRC004 - Sheet URL is not configured
//	SRC005 - Sheet could not be downloaded (non-200 status)
//
// # Network and Upstream Errors (NET001-NET099)
//
//	NET001 - Bot token or channel is not set
//	NET002 - Bot API rejected the request
//	NET003 - AI assistant is not configured
//	NET004 - AI assistant rejected the request or returned no audio
//	NET005 - Upstream timed out
//	NET006 - Upstream unreachable
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Input failed field validation
//	VAL002 - Category already exists
//	VAL003 - Category is protected
//
// # Authentication Errors (AUTH001-AUTH099)
//
//	AUTH001 - Wrong login or password
//	AUTH002 - Session missing, expired or ended
//
// # Sync Errors (SYNC001-SYNC099)
//
//	SYNC001 - Another sync is running
//
// # Other
//
//	RATE001 - Too many requests
//	NF001   - Toy, category or order not found
//	ERR000  - Fallback; check the logs for the technical error
//
// Sentinel errors are matched with errors.Is first. Patterns are matched
// case-insensitively with strings.Contains. The first match wins, so more
// specific entries come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/leopold/internal/adminauth"
	"github.com/JonMunkholm/leopold/internal/assistant"
	"github.com/JonMunkholm/leopold/internal/csvimport"
	"github.com/JonMunkholm/leopold/internal/sheets"
	"github.com/JonMunkholm/leopold/internal/shop"
	"github.com/JonMunkholm/leopold/internal/store"
	"github.com/JonMunkholm/leopold/internal/telegram"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern maps either a sentinel error or a message substring to a
// user message.
type errorPattern struct {
	target  error
	pattern string
	msg     UserMessage
}

func (p errorPattern) matches(err error, lower string) bool {
	if p.target != nil {
		return errors.Is(err, p.target)
	}
	return strings.Contains(lower, p.pattern)
}

var errorPatterns = []errorPattern{
	// Source
	{
		target: csvimport.ErrTooFewRows,
		msg:    UserMessage{Message: "The sheet has no data rows", Action: "Add a header row and at least one product row", Code: "SRC001"},
	},
	{
		target: csvimport.ErrMissingColumns,
		msg:    UserMessage{Message: "The sheet has no name or price column", Action: "Name the columns, for example Назва and Ціна", Code: "SRC002"},
	},
	{
		target: csvimport.ErrSourceTooLarge,
		msg:    UserMessage{Message: "The sheet is too large", Action: "Split the catalog into smaller sheets", Code: "SRC003"},
	},
	{
		target: sheets.ErrNoURL,
		msg:    UserMessage{Message: "No sheet URL is configured", Action: "Publish the sheet as CSV and set its URL", Code: "SRC004"},
	},
	{
		target: sheets.ErrBadStatus,
		msg:    UserMessage{Message: "The sheet could not be downloaded", Action: "Check that the sheet is published to the web as CSV", Code: "SRC005"},
	},

	// Network and upstream
	{
		target: telegram.ErrNotConfigured,
		msg:    UserMessage{Message: "Bot token or channel is not set", Action: "Enter the bot token and channel id in settings", Code: "NET001"},
	},
	{
		target: telegram.ErrAPI,
		msg:    UserMessage{Message: "The bot API rejected the request", Action: "Check the bot token and channel id", Code: "NET002"},
	},
	{
		target: assistant.ErrNotConfigured,
		msg:    UserMessage{Message: "The AI assistant is not available", Action: "Please try again later", Code: "NET003"},
	},
	{
		target: assistant.ErrAPI,
		msg:    UserMessage{Message: "The AI assistant could not answer", Action: "Please try again in a few moments", Code: "NET004"},
	},
	{
		target: assistant.ErrNoAudio,
		msg:    UserMessage{Message: "The AI assistant returned no audio", Action: "Please try again in a few moments", Code: "NET004"},
	},
	{
		pattern: "context deadline exceeded",
		msg:     UserMessage{Message: "The request timed out", Action: "Please try again", Code: "NET005"},
	},
	{
		pattern: "timeout",
		msg:     UserMessage{Message: "The request timed out", Action: "Please try again", Code: "NET005"},
	},
	{
		pattern: "connection refused",
		msg:     UserMessage{Message: "An upstream service is unreachable", Action: "Please try again in a few moments", Code: "NET006"},
	},
	{
		pattern: "no such host",
		msg:     UserMessage{Message: "An upstream service is unreachable", Action: "Check the network connection", Code: "NET006"},
	},

	// Validation
	{
		pattern: "validation failed",
		msg:     UserMessage{Message: "Some fields are invalid", Action: "Correct the highlighted fields and try again", Code: "VAL001"},
	},
	{
		target: shop.ErrDuplicateCategory,
		msg:    UserMessage{Message: "This category already exists", Action: "Choose another name", Code: "VAL002"},
	},
	{
		target: shop.ErrProtectedCategory,
		msg:    UserMessage{Message: "This category cannot be removed", Action: "Remove a different category", Code: "VAL003"},
	},

	// Authentication
	{
		target: adminauth.ErrInvalidCredentials,
		msg:    UserMessage{Message: "Wrong login or password", Action: "Check your credentials and try again", Code: "AUTH001"},
	},
	{
		target: adminauth.ErrInvalidToken,
		msg:    UserMessage{Message: "Your session has expired", Action: "Log in again", Code: "AUTH002"},
	},
	{
		target: ErrSessionEnded,
		msg:    UserMessage{Message: "Your session has expired", Action: "Log in again", Code: "AUTH002"},
	},

	// Sync
	{
		target: ErrTooManySyncs,
		msg:    UserMessage{Message: "Another sync is already running", Action: "Wait for it to finish and try again", Code: "SYNC001"},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg:     UserMessage{Message: "Too many requests", Action: "Please wait a moment before trying again", Code: "RATE001"},
	},

	// Not found
	{
		target: shop.ErrUnknownToy,
		msg:    UserMessage{Message: "Toy not found", Action: "Refresh the catalog", Code: "NF001"},
	},
	{
		target: shop.ErrUnknownCategory,
		msg:    UserMessage{Message: "Category not found", Action: "Refresh the category list", Code: "NF001"},
	},
	{
		target: shop.ErrUnknownOrder,
		msg:    UserMessage{Message: "Order not found", Action: "Refresh the order list", Code: "NF001"},
	},
	{
		target: store.ErrNotFound,
		msg:    UserMessage{Message: "Not found", Action: "Refresh the page", Code: "NF001"},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. A nil
// error maps to the zero UserMessage.
//
//	msg := MapError(fmt.Errorf("sync: %w", ErrTooManySyncs))
//	// msg.Code == "SYNC001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	lower := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.matches(err, lower) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
