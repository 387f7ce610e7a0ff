package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/voyage/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	cursor := &domain.Cursor{
		StartedAt: time.Date(2025, time.March, 1, 8, 30, 0, 123456789, time.UTC),
		ID:        "act-42",
	}

	token := EncodeCursor(cursor)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	require.True(t, cursor.StartedAt.Equal(decoded.StartedAt))
	require.Equal(t, cursor.ID, decoded.ID)
}

func TestDecodeCursorEmptyToken(t *testing.T) {
	decoded, err := DecodeCursor("  ")
	require.NoError(t, err)
	require.Nil(t, decoded)
}

func TestDecodeCursorGarbage(t *testing.T) {
	_, err := DecodeCursor("not-base64!!!")
	require.Error(t, err)

	_, err = DecodeCursor("bm8tcGlwZQ==") // valid base64, missing separator
	require.Error(t, err)
}
