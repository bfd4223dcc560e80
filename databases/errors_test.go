package databases_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/radio-santana-api/databases"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want databases.Code
	}{
		{"nil", nil, ""},
		{"cancelled", context.Canceled, databases.CodeCancelled},
		{"deadline", fmt.Errorf("find: %w", context.DeadlineExceeded), databases.CodeDeadlineExceeded},
		{"no documents", mongo.ErrNoDocuments, databases.CodeNotFound},
		{"client disconnected", mongo.ErrClientDisconnected, databases.CodeUnavailable},
		{"network label", mongo.CommandError{Code: 0, Labels: []string{"NetworkError"}}, databases.CodeUnavailable},
		{"duplicate key", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}, databases.CodeAlreadyExists},
		{"unauthorized", mongo.CommandError{Code: 13, Name: "Unauthorized"}, databases.CodePermissionDenied},
		{"authentication failed", mongo.CommandError{Code: 18, Name: "AuthenticationFailed"}, databases.CodeUnauthenticated},
		{"write conflict", mongo.CommandError{Code: 112, Name: "WriteConflict"}, databases.CodeAborted},
		{"memory limit", mongo.CommandError{Code: 146, Name: "ExceededMemoryLimit"}, databases.CodeResourceExhausted},
		{"internal", mongo.CommandError{Code: 1, Name: "InternalError"}, databases.CodeInternal},
		{"host unreachable", mongo.CommandError{Code: 6, Name: "HostUnreachable"}, databases.CodeUnavailable},
		{"history lost", mongo.CommandError{Code: 286, Name: "ChangeStreamHistoryLost"}, databases.CodeFailedPrecondition},
		{"resumable label", mongo.CommandError{Code: 4242, Labels: []string{"ResumableChangeStreamError"}}, databases.CodeUnavailable},
		{"unmapped server code", mongo.CommandError{Code: 4242}, databases.CodeUnknown},
		{"plain error", errors.New("boom"), databases.CodeUnknown},
		{"already classified", &databases.Error{Code: databases.CodeDataLoss, Op: "x"}, databases.CodeDataLoss},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, databases.Classify(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []databases.Code{
		databases.CodeUnavailable,
		databases.CodeResourceExhausted,
		databases.CodeInternal,
		databases.CodeDeadlineExceeded,
		databases.CodeAborted,
	}
	for _, c := range retryable {
		assert.True(t, databases.IsRetryable(&databases.Error{Code: c}), c)
	}

	terminal := []databases.Code{
		databases.CodePermissionDenied,
		databases.CodeUnauthenticated,
		databases.CodeNotFound,
		databases.CodeFailedPrecondition,
		databases.CodeUnknown,
		databases.CodeCancelled,
	}
	for _, c := range terminal {
		assert.False(t, databases.IsRetryable(&databases.Error{Code: c}), c)
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, databases.Wrap("find", nil))

	err := databases.Wrap("find chat messages", mongo.ErrNoDocuments)
	var se *databases.Error
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, databases.CodeNotFound, se.Code)
	assert.Equal(t, "find chat messages", se.Op)
	assert.True(t, errors.Is(err, mongo.ErrNoDocuments))
	assert.EqualError(t, err, "find chat messages: not-found: mongo: no documents in result")

	// already classified errors keep their original op
	again := databases.Wrap("outer", err)
	assert.Same(t, err, again)
}

func TestError_NoCause(t *testing.T) {
	err := &databases.Error{Code: databases.CodeNotFound, Op: "update music request"}
	assert.EqualError(t, err, "update music request: not-found")
	assert.Nil(t, errors.Unwrap(err))
}
