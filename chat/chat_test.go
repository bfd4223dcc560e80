package chat_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linesmerrill/radio-santana-api/api/testhelpers"
	"github.com/linesmerrill/radio-santana-api/chat"
	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/telemetry"
)

func waitFor(t *testing.T, ch <-chan []models.ChatMessage, cond func([]models.ChatMessage) bool) []models.ChatMessage {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ch:
			if cond(got) {
				return got
			}
		case <-deadline:
			t.Fatal("timed out waiting for chat snapshot")
			return nil
		}
	}
}

func TestManager_SendMessage(t *testing.T) {
	db := &testhelpers.ChatMessages{}
	sink := &telemetry.Recorder{}
	m := chat.NewManager(db, sink, 0, 0)

	err := m.SendMessage(context.Background(), "Ana", "  hola a todos  ")
	require.NoError(t, err)

	stored := db.All()
	require.Len(t, stored, 1)
	assert.Equal(t, "Ana", stored[0].Username)
	assert.Equal(t, "hola a todos", stored[0].Message)
	assert.Equal(t, models.MessageTypeUser, stored[0].Type)
	assert.False(t, stored[0].Timestamp.IsZero())

	assert.Equal(t, []telemetry.Event{{Name: telemetry.EventChatMessageSent, Params: map[string]string{"type": "user"}}}, sink.Events())
}

func TestManager_SendMessageValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		content  string
		field    string
	}{
		{"empty username", "", "hola", "username"},
		{"blank username", "   ", "hola", "username"},
		{"empty content", "Ana", "", "message"},
		{"blank content", "Ana", " \t\n", "message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &testhelpers.ChatMessages{}
			m := chat.NewManager(db, nil, 0, 0)

			err := m.SendMessage(context.Background(), tt.username, tt.content)

			var ve *models.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, db.All())
		})
	}
}

func TestManager_SendMessageWriteError(t *testing.T) {
	db := &testhelpers.ChatMessages{InsertErr: mongo.CommandError{Code: 13, Name: "Unauthorized"}}
	sink := &telemetry.Recorder{}
	m := chat.NewManager(db, sink, 0, 0)

	err := m.SendMessage(context.Background(), "Ana", "hola")

	var we *chat.WriteError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, databases.CodePermissionDenied, we.Code)
	assert.Equal(t, "No tienes permisos para enviar mensajes.", we.Message)
	assert.Equal(t, we.Message, chat.ErrorMessage(err))
	assert.Empty(t, sink.Events())
}

func TestWriteMessage(t *testing.T) {
	codes := []databases.Code{
		databases.CodePermissionDenied,
		databases.CodeUnauthenticated,
		databases.CodeNotFound,
		databases.CodeAlreadyExists,
		databases.CodeResourceExhausted,
		databases.CodeFailedPrecondition,
		databases.CodeAborted,
		databases.CodeOutOfRange,
		databases.CodeUnimplemented,
		databases.CodeInternal,
		databases.CodeUnavailable,
		databases.CodeDataLoss,
		databases.CodeDeadlineExceeded,
	}
	seen := map[string]bool{}
	for _, c := range codes {
		msg := chat.WriteMessage(c)
		assert.NotEmpty(t, msg, c)
		assert.NotContains(t, msg, string(c), "mapped codes use their own text")
		seen[msg] = true
	}
	assert.Len(t, seen, len(codes))

	assert.Equal(t, "Error al enviar el mensaje (cancelled). Inténtalo de nuevo.", chat.WriteMessage(databases.CodeCancelled))
	assert.Contains(t, chat.WriteMessage(databases.CodeUnknown), "unknown")
}

func TestErrorMessage(t *testing.T) {
	assert.Empty(t, chat.ErrorMessage(nil))
	assert.Equal(t, "x", chat.ErrorMessage(&models.ValidationError{Message: "x"}))
	assert.Equal(t, chat.ConnectionMessage, chat.ErrorMessage(errors.New("boom")))
}

func TestManager_SystemAndDJMessages(t *testing.T) {
	db := &testhelpers.ChatMessages{}
	m := chat.NewManager(db, nil, 0, 0)

	require.NoError(t, m.SendSystemMessage(context.Background(), "¡Bienvenido Ana a RadioOnline Santana!"))
	require.NoError(t, m.SendDJMessage(context.Background(), "DJ Carlos", "Siguiente canción en camino"))

	err := m.SendDJMessage(context.Background(), " ", "hola")
	var ve *models.ValidationError
	assert.True(t, errors.As(err, &ve))

	stored := db.All()
	require.Len(t, stored, 2)
	assert.Equal(t, models.SystemUsername, stored[0].Username)
	assert.Equal(t, models.MessageTypeSystem, stored[0].Type)
	assert.Equal(t, "DJ Carlos", stored[1].Username)
	assert.Equal(t, models.MessageTypeDJ, stored[1].Type)
}

func TestManager_SubscribeDeliversOldestFirstWindow(t *testing.T) {
	db := &testhelpers.ChatMessages{}
	m := chat.NewManager(db, nil, 3, 0)

	for i := 1; i <= 4; i++ {
		require.NoError(t, m.SendMessage(context.Background(), "Ana", fmt.Sprintf("mensaje %d", i)))
	}

	snapshots := make(chan []models.ChatMessage, 16)
	sub := m.Subscribe(func(msgs []models.ChatMessage) { snapshots <- msgs }, nil)
	defer sub.Cancel()

	got := waitFor(t, snapshots, func([]models.ChatMessage) bool { return true })
	require.Len(t, got, 3)
	assert.Equal(t, "mensaje 2", got[0].Message)
	assert.Equal(t, "mensaje 4", got[2].Message)

	require.NoError(t, m.SendMessage(context.Background(), "Luis", "mensaje 5"))

	got = waitFor(t, snapshots, func(msgs []models.ChatMessage) bool {
		return len(msgs) > 0 && msgs[len(msgs)-1].Message == "mensaje 5"
	})
	require.Len(t, got, 3)
	assert.Equal(t, "mensaje 3", got[0].Message)
	assert.Equal(t, "Luis", got[2].Username)
	assert.Equal(t, models.MessageTypeUser, got[2].Type)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].SentAt().Before(got[i].SentAt()))
	}
}

func TestManager_SubscribeRetriesUnavailable(t *testing.T) {
	db := &testhelpers.ChatMessages{}
	m := chat.NewManager(db, nil, 0, 10*time.Millisecond)

	snapshots := make(chan []models.ChatMessage, 16)
	errs := make(chan error, 1)
	sub := m.Subscribe(func(msgs []models.ChatMessage) { snapshots <- msgs }, func(err error) { errs <- err })
	defer sub.Cancel()

	waitFor(t, snapshots, func([]models.ChatMessage) bool { return true })
	require.Eventually(t, func() bool { return db.OpenStreams() == 1 }, time.Second, time.Millisecond)

	db.FailStreams(mongo.CommandError{Code: 91, Name: "ShutdownInProgress"})
	require.NoError(t, m.SendMessage(context.Background(), "Ana", "sigo aquí"))

	got := waitFor(t, snapshots, func(msgs []models.ChatMessage) bool { return len(msgs) == 1 })
	assert.Equal(t, "sigo aquí", got[0].Message)
	assert.Empty(t, errs)
}

func TestManager_SubscribeTerminalError(t *testing.T) {
	db := &testhelpers.ChatMessages{WatchErrs: []error{mongo.CommandError{Code: 13, Name: "Unauthorized"}}}
	m := chat.NewManager(db, nil, 0, time.Millisecond)

	errs := make(chan error, 1)
	sub := m.Subscribe(func([]models.ChatMessage) {}, func(err error) { errs <- err })
	defer sub.Cancel()

	select {
	case err := <-errs:
		assert.Equal(t, databases.CodePermissionDenied, databases.Classify(err))
		assert.Equal(t, chat.ConnectionMessage, chat.ErrorMessage(err))
	case <-time.After(2 * time.Second):
		t.Fatal("terminal error never reported")
	}
}

func TestManager_Recent(t *testing.T) {
	db := &testhelpers.ChatMessages{}
	m := chat.NewManager(db, nil, 2, 0)

	msgs, err := m.Recent(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)

	for _, text := range []string{"uno", "dos", "tres"} {
		require.NoError(t, m.SendMessage(context.Background(), "Ana", text))
	}
	msgs, err = m.Recent(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "dos", msgs[0].Message)
	assert.Equal(t, "tres", msgs[1].Message)
}
