package storage

import (
	"errors"
	"fmt"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

type ErrorKind int

const (
	ConnectionFailed ErrorKind = iota + 1
	BucketCreateFailed
	BucketNotFound
	LocalIOFailed
)

func (k ErrorKind) String() string {
	switch k {
	case ConnectionFailed:
		return "connection failed"
	case BucketCreateFailed:
		return "bucket create failed"
	case BucketNotFound:
		return "bucket not found"
	case LocalIOFailed:
		return "local io failed"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is returned for the failures this package classifies. Err holds the
// SDK or os error that caused it.
type Error struct {
	Kind   ErrorKind
	Op     string
	Target string
	Err    error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrConnectionFailed   = &Error{Kind: ConnectionFailed}
	ErrBucketCreateFailed = &Error{Kind: BucketCreateFailed}
	ErrBucketNotFound     = &Error{Kind: BucketNotFound}
	ErrLocalIOFailed      = &Error{Kind: LocalIOFailed}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + " " + e.Target + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Err == nil
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func localIOError(op, path string, err error) error {
	return &Error{Kind: LocalIOFailed, Op: op, Target: path, Err: err}
}

// describe extracts the HTTP status and service reason from an SDK error.
func describe(err error) (int, string) {
	status := 0
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		reason := apiErr.ErrorCode()
		if msg := apiErr.ErrorMessage(); msg != "" {
			reason += ": " + msg
		}
		return status, reason
	}
	return status, err.Error()
}
