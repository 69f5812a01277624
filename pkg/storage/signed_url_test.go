package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, expiresAt, err := signer.Generate("abc123/20240101/photo.jpg")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	key, parsedExp, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "abc123/20240101/photo.jpg", key)
	assert.WithinDuration(t, expiresAt, parsedExp, time.Second)
}

func TestSignedURLRejectsTamperedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, _, err := signer.Generate("abc/export.json")
	require.NoError(t, err)

	_, _, err = signer.Parse(token+"x", false)
	assert.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("secret", -time.Minute)

	token, _, err := signer.Generate("abc/export.json")
	require.NoError(t, err)

	_, _, err = signer.Parse(token, false)
	assert.Error(t, err)

	key, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "abc/export.json", key)
}

func TestSignedURLRequiresSecret(t *testing.T) {
	signer := NewSignedURLSigner("", time.Minute)

	_, _, err := signer.Generate("abc/export.json")
	assert.Error(t, err)
}

func TestLocalStorePutOverwrites(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), nil, "/files")
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), "s1/q1/0_deck.pdf", []byte("v1"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "s1/q1/0_deck.pdf", ref.Key)

	ref2, err := store.Put(context.Background(), "s1/q1/0_deck.pdf", []byte("v2"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, ref.Key, ref2.Key)

	file, err := store.Open("s1/q1/0_deck.pdf")
	require.NoError(t, err)
	defer file.Close()
	buf := make([]byte, 2)
	_, err = file.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(buf))
}
