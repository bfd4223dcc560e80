package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shaj13/go-guardian/auth"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/radio-santana-api/api"
	"github.com/linesmerrill/radio-santana-api/identity"
	"github.com/linesmerrill/radio-santana-api/models"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeProvider) SignInAnonymously(context.Context) (*identity.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.calls++
	return &identity.Credential{
		UID:       fmt.Sprintf("uid-%d", f.calls),
		Anonymous: true,
		Token:     fmt.Sprintf("token-%d", f.calls),
	}, nil
}

// asUser stores a principal on req the way the auth middleware does
func asUser(req *http.Request, id string, groups ...string) *http.Request {
	user := auth.NewDefaultUser(id, id, groups, nil)
	return req.WithContext(api.WithUser(req.Context(), user))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.MessageError {
	t.Helper()
	var resp models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp.Response
}
