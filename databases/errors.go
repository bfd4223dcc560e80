package databases

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Code is a store-neutral classification of a database failure
type Code string

// The codes a store failure is classified into
const (
	CodeCancelled          Code = "cancelled"
	CodeUnknown            Code = "unknown"
	CodePermissionDenied   Code = "permission-denied"
	CodeUnauthenticated    Code = "unauthenticated"
	CodeNotFound           Code = "not-found"
	CodeAlreadyExists      Code = "already-exists"
	CodeResourceExhausted  Code = "resource-exhausted"
	CodeFailedPrecondition Code = "failed-precondition"
	CodeAborted            Code = "aborted"
	CodeOutOfRange         Code = "out-of-range"
	CodeUnimplemented      Code = "unimplemented"
	CodeInternal           Code = "internal"
	CodeUnavailable        Code = "unavailable"
	CodeDataLoss           Code = "data-loss"
	CodeDeadlineExceeded   Code = "deadline-exceeded"
)

// Error is a classified store failure
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap classifies err and tags it with the operation that produced it
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Code: Classify(err), Op: op, Err: err}
}

// server error codes, see mongo/base/error_codes.yml
var serverCodes = []struct {
	codes []int
	code  Code
}{
	{[]int{13}, CodePermissionDenied},                                     // Unauthorized
	{[]int{18}, CodeUnauthenticated},                                      // AuthenticationFailed
	{[]int{26}, CodeNotFound},                                             // NamespaceNotFound
	{[]int{11000, 11001}, CodeAlreadyExists},                              // DuplicateKey
	{[]int{146, 292}, CodeResourceExhausted},                              // ExceededMemoryLimit, QueryExceededMemoryLimitNoDiskUseAllowed
	{[]int{24, 112, 251}, CodeAborted},                                    // LockTimeout, WriteConflict, NoSuchTransaction
	{[]int{50, 89, 262}, CodeDeadlineExceeded},                            // MaxTimeMSExpired, NetworkTimeout, ExceededTimeLimit
	{[]int{10334}, CodeOutOfRange},                                        // BSONObjectTooLarge
	{[]int{115, 40573}, CodeUnimplemented},                                // CommandNotSupported, change streams need a replica set
	{[]int{1}, CodeInternal},                                              // InternalError
	{[]int{6, 7, 91, 189, 9001, 10107, 11600, 11602, 13435}, CodeUnavailable}, // host and primary failures
	{[]int{2, 9, 14, 280, 286}, CodeFailedPrecondition},                   // BadValue, FailedToParse, TypeMismatch, ChangeStreamFatalError, ChangeStreamHistoryLost
}

// Classify maps a mongo-driver error onto a Code
func Classify(err error) Code {
	if err == nil {
		return ""
	}

	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}

	switch {
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return CodeDeadlineExceeded
	case errors.Is(err, mongo.ErrNoDocuments):
		return CodeNotFound
	case errors.Is(err, mongo.ErrClientDisconnected), mongo.IsNetworkError(err):
		return CodeUnavailable
	case mongo.IsDuplicateKeyError(err):
		return CodeAlreadyExists
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		for _, entry := range serverCodes {
			for _, c := range entry.codes {
				if serverErr.HasErrorCode(c) {
					return entry.code
				}
			}
		}
		if serverErr.HasErrorLabel("ResumableChangeStreamError") || serverErr.HasErrorLabel("TransientTransactionError") {
			return CodeUnavailable
		}
	}

	return CodeUnknown
}

// IsRetryable reports whether a failure is transient enough to resubscribe after
func IsRetryable(err error) bool {
	switch Classify(err) {
	case CodeUnavailable, CodeResourceExhausted, CodeInternal, CodeDeadlineExceeded, CodeAborted:
		return true
	}
	return false
}
