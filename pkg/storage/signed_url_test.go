package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)

	token, expiresAt, err := signer.Generate("run-1", "runs/run-1/Sub_PaySheet_2025-06-02_to_2025-06-08.xlsx")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	runID, relPath, parsedExp, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "run-1", runID)
	assert.Equal(t, "runs/run-1/Sub_PaySheet_2025-06-02_to_2025-06-08.xlsx", relPath)
	assert.WithinDuration(t, expiresAt, parsedExp, time.Second)
}

func TestSignedURLRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Hour)
	token, _, err := signer.Generate("run-1", "runs/run-1/out.xlsx")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token+"x", false)
	assert.Error(t, err)

	other := NewSignedURLSigner("other-secret", time.Hour)
	_, _, _, err = other.Parse(token, false)
	assert.Error(t, err)
}

func TestSignedURLExpiry(t *testing.T) {
	signer := NewSignedURLSigner("test-secret", time.Nanosecond)
	token, _, err := signer.Generate("run-1", "runs/run-1/out.xlsx")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	_, _, _, err = signer.Parse(token, false)
	assert.Error(t, err)

	_, _, _, err = signer.Parse(token, true)
	assert.NoError(t, err)
}
