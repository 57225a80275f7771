// Package common defines shared constants, sentinel errors and the exit-code
// categories used across runas components. Callers should use errors.Is to
// match the sentinel values and ExitCodeOf to map a failure to a process exit
// status.
package common

import (
	"errors"
	"fmt"
)

var (
	// Realm store errors.
	ErrConfigMissing = errors.New("file realm configuration file is missing")
	ErrRealmDisabled = errors.New("file realm must be enabled")

	// Cluster errors.
	ErrUnhealthy        = errors.New("cluster health is currently RED")
	ErrNoHealthStatus   = errors.New("cluster health API did not return a status value")
	ErrUnexpectedStatus = errors.New("unexpected http status")

	// Action errors.
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrAborted          = errors.New("aborted by user")
)

// ExitCode is a process exit status. Values follow sysexits(3).
type ExitCode int

const (
	ExitOK          ExitCode = 0
	ExitUsage       ExitCode = 64
	ExitDataError   ExitCode = 65
	ExitUnavailable ExitCode = 69
	ExitConfig      ExitCode = 78
)

func (c ExitCode) String() string {
	switch c {
	case ExitOK:
		return "ok"
	case ExitUsage:
		return "usage"
	case ExitDataError:
		return "data error"
	case ExitUnavailable:
		return "unavailable"
	case ExitConfig:
		return "config"
	default:
		return fmt.Sprintf("exit(%d)", int(c))
	}
}

// Error is a failure tagged with the exit code category it maps to.
type Error struct {
	Code ExitCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "":
		if e.Err == nil {
			return e.Code.String()
		}
		return e.Err.Error()
	case e.Err == nil:
		return e.Msg
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError returns a categorized error. err may be nil.
func NewError(code ExitCode, msg string, err error) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

func ConfigError(msg string, err error) *Error {
	return NewError(ExitConfig, msg, err)
}

func DataError(msg string, err error) *Error {
	return NewError(ExitDataError, msg, err)
}

func UnavailableError(msg string, err error) *Error {
	return NewError(ExitUnavailable, msg, err)
}

// Categorize keeps err as is when it already carries a category and wraps it
// as a data error otherwise. A nil error stays nil.
func Categorize(err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return DataError("", err)
}

// ExitCodeOf returns the exit status for err: ExitOK for nil, the carried code
// for categorized errors and ExitDataError for anything else.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return ExitOK
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ExitDataError
}
