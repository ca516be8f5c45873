package protocol

import (
	"errors"
	"fmt"
)

// ErrorDetail is the structured error carried by "error" and
// "storage_error" replies, and by failed "storage_delete" replies.
type ErrorDetail struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// NewErrorDetail creates an ErrorDetail with the given code and message.
func NewErrorDetail(id int, message string) *ErrorDetail {
	return &ErrorDetail{ID: id, Message: message}
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	return fmt.Sprintf("[%d] %s", e.ID, e.Message)
}

// Is matches any ErrorDetail with the same code, so decoded replies compare
// equal to the sentinels below.
func (e *ErrorDetail) Is(target error) bool {
	t, ok := target.(*ErrorDetail)
	if !ok {
		return false
	}
	return e.ID == t.ID
}

// Code extracts the code of an ErrorDetail in err's chain. ok is false when
// err carries no ErrorDetail.
func Code(err error) (code int, ok bool) {
	var d *ErrorDetail
	if errors.As(err, &d) {
		return d.ID, true
	}
	return 0, false
}

// Codes reported by the host.
const (
	CodeOriginNotAllowed = 403
	CodeMissingCommand   = 405
	CodeMalformed        = 415
	CodeUnknownType      = 417
	CodeRateLimited      = 429
	CodeStoreFailure     = 500
	CodeSetExisting      = 900
	CodeUpdateMissing    = 910
	CodeDeleteMissing    = 920
	CodeUnknownCommand   = 990
	CodeReservedKey      = 999
)

// Codes detected by the client while validating replies.
const (
	CodeUnexpectedResult     = -1
	CodeKeyMismatch          = -2
	CodeSetVerifyFailed      = -10
	CodeUpdateVerifyFailed   = -20
	CodeUnknownClientCommand = -90
)

// Protocol shape errors.
var (
	ErrOriginNotAllowed = NewErrorDetail(CodeOriginNotAllowed, "sender not allowed")
	ErrMissingCommand   = NewErrorDetail(CodeMissingCommand, "command in the storage request is not known")
	ErrMalformed        = NewErrorDetail(CodeMalformed, "the message does not have a valid format")
	ErrUnknownType      = NewErrorDetail(CodeUnknownType, "the message does not contain a known type")
	ErrRateLimited      = NewErrorDetail(CodeRateLimited, "rate limit exceeded for sender")
	ErrUnknownCommand   = NewErrorDetail(CodeUnknownCommand, "unknown storage command")
)

// Storage invariant errors.
var (
	ErrStoreFailure  = NewErrorDetail(CodeStoreFailure, "storage host failed to access the store")
	ErrSetExisting   = NewErrorDetail(CodeSetExisting, "set of an existing key is not allowed, please use update")
	ErrUpdateMissing = NewErrorDetail(CodeUpdateMissing, "update of a not existing key is not allowed, please use set")
	ErrDeleteMissing = NewErrorDetail(CodeDeleteMissing, "delete of a not existing key is not possible")
	ErrReservedKey   = NewErrorDetail(CodeReservedKey, "key equals an internal key used by the storage host and is protected, please use a different key")
)

// Reply validation errors.
var (
	ErrUnexpectedResult     = NewErrorDetail(CodeUnexpectedResult, "unexpected result type")
	ErrKeyMismatch          = NewErrorDetail(CodeKeyMismatch, "wrong key in result message, messages mixed up")
	ErrSetVerifyFailed      = NewErrorDetail(CodeSetVerifyFailed, "wrong value in result message, set failed")
	ErrUpdateVerifyFailed   = NewErrorDetail(CodeUpdateVerifyFailed, "wrong value in result message, update failed")
	ErrUnknownClientCommand = NewErrorDetail(CodeUnknownClientCommand, "unknown storage command")
)
