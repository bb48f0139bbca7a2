package analysis

import (
	"errors"
	"fmt"
)

// Class buckets a pipeline failure for the retry engine and for the
// user-facing message that ends up on the job record.
type Class string

const (
	ClassContentUnavailable Class = "content_unavailable"
	ClassRateLimited        Class = "rate_limited"
	ClassDailyQuota         Class = "daily_quota"
	ClassAuth               Class = "auth"
	ClassMalformedResponse  Class = "malformed_response"
	ClassGeneric            Class = "generic"
)

// Error wraps an underlying failure with its class and the message shown
// to the user. Only ClassRateLimited is worth retrying.
type Error struct {
	Class   Class
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ContentUnavailable(msg string, err error) *Error {
	if msg == "" {
		msg = "Could not read the job posting. Try pasting the text manually."
	}
	return &Error{Class: ClassContentUnavailable, Message: msg, Err: err}
}

func RateLimited(err error) *Error {
	return &Error{Class: ClassRateLimited, Message: "The analysis service is busy right now. Please try again shortly.", Err: err}
}

func DailyQuota(err error) *Error {
	return &Error{Class: ClassDailyQuota, Message: "The daily analysis quota is exhausted. Come back tomorrow.", Err: err}
}

func Auth(err error) *Error {
	return &Error{Class: ClassAuth, Message: "The API key was rejected. Check your credential in settings.", Err: err}
}

func MalformedResponse(err error) *Error {
	return &Error{Class: ClassMalformedResponse, Message: "The analysis could not be completed. Please try again.", Err: err}
}

func Generic(err error) *Error {
	return &Error{Class: ClassGeneric, Message: "Analysis failed. Please try again.", Err: err}
}

// Classify returns the class of err, or ClassGeneric for errors that did
// not originate in this package.
func Classify(err error) Class {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Class
	}
	return ClassGeneric
}

// UserMessage extracts the user-facing message carried by err.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Analysis failed. Please try again."
}
