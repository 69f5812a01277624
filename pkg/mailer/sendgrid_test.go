package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer(t *testing.T, handler http.HandlerFunc) (*SendGridMailer, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	m, err := NewSendGridMailer(SendGridConfig{
		APIKey:    "sg-test",
		BaseURL:   server.URL,
		FromEmail: "studio@example.com",
		FromName:  "Studio",
	}, nil)
	require.NoError(t, err)
	return m, server
}

func TestSendGridMailerSend(t *testing.T) {
	var captured sgPayload
	m, _ := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.WriteHeader(http.StatusAccepted)
	})

	err := m.Send(context.Background(), Message{
		To:       "ada@example.com",
		Subject:  "Your responses",
		TextBody: "attached",
		Attachments: []Attachment{
			{Filename: "export.json", MIMEType: "application/json", Content: []byte(`{}`)},
		},
	})
	require.NoError(t, err)

	require.Len(t, captured.Personalizations, 1)
	assert.Equal(t, "ada@example.com", captured.Personalizations[0].To[0].Email)
	assert.Equal(t, "studio@example.com", captured.From.Email)
	require.Len(t, captured.Attachments, 1)
	assert.Equal(t, "export.json", captured.Attachments[0].Filename)
}

func TestSendGridMailerSurfacesAPIError(t *testing.T) {
	m, _ := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	})

	err := m.Send(context.Background(), Message{To: "ada@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSendGridMailerRequiresRecipient(t *testing.T) {
	m, _ := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	err := m.Send(context.Background(), Message{})
	assert.Error(t, err)
}

func TestNewSendGridMailerValidation(t *testing.T) {
	_, err := NewSendGridMailer(SendGridConfig{FromEmail: "a@b.c"}, nil)
	assert.Error(t, err)

	_, err = NewSendGridMailer(SendGridConfig{APIKey: "k"}, nil)
	assert.Error(t, err)
}
