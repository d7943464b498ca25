package settingsapi_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleettrack/notifier/pkg/fleet"
	"github.com/fleettrack/notifier/pkg/settingsapi"
)

type stubValidator struct {
	err  error
	seen *fleet.NotificationSettings
}

func (v *stubValidator) Validate(_ context.Context, settings fleet.NotificationSettings) error {
	v.seen = &settings
	return v.err
}

func newTestServer(t *testing.T, mail, push *stubValidator) *httptest.Server {
	t.Helper()
	h := settingsapi.NewHandler(mail, push,
		settingsapi.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandler_CheckMailAccepted(t *testing.T) {
	t.Parallel()

	mail := &stubValidator{}
	srv := newTestServer(t, mail, &stubValidator{})

	resp := postJSON(t, srv.URL+"/settings/check-mail",
		`{"server":"smtp.example.com","port":587,"from_address":"ops@example.com"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	require.NotNil(t, mail.seen)
	assert.Equal(t, "smtp.example.com", mail.seen.Server)
	assert.Equal(t, 587, mail.seen.Port)
}

func TestHandler_CheckMailRejected(t *testing.T) {
	t.Parallel()

	mail := &stubValidator{err: errors.New("smtp dial smtp.example.com: connection refused")}
	srv := newTestServer(t, mail, &stubValidator{})

	resp := postJSON(t, srv.URL+"/settings/check-mail", `{"server":"smtp.example.com"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"error":"smtp dial smtp.example.com: connection refused"}`, string(body))
}

func TestHandler_CheckPushRoutesToPushValidator(t *testing.T) {
	t.Parallel()

	mail := &stubValidator{}
	push := &stubValidator{}
	srv := newTestServer(t, mail, push)

	resp := postJSON(t, srv.URL+"/settings/check-push", `{"push_token":"tok"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, mail.seen)
	require.NotNil(t, push.seen)
	assert.Equal(t, "tok", push.seen.PushToken)
}

func TestHandler_MalformedPayload(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubValidator{}, &stubValidator{})

	resp := postJSON(t, srv.URL+"/settings/check-mail", `{"server":`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"error":"invalid settings payload"}`, string(body))
}
