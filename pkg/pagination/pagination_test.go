package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	require.Equal(t, DefaultLimit, NormalizeLimit(0))
	require.Equal(t, DefaultLimit, NormalizeLimit(-5))
	require.Equal(t, 10, NormalizeLimit(10))
	require.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	require.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		Timestamp: time.Date(2025, 8, 20, 14, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := ParseCursor(EncodeCursor(original))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	require.True(t, original.Timestamp.Equal(parsed.Timestamp))
	require.Equal(t, original.ID, parsed.ID)
}

func TestParseCursorEmpty(t *testing.T) {
	parsed, err := ParseCursor("   ")
	require.NoError(t, err)
	require.Nil(t, parsed)
}

func TestParseCursorMalformed(t *testing.T) {
	_, err := ParseCursor("not base64!!")
	require.Error(t, err)

	_, err = ParseCursor("bm8gcGlwZSBoZXJl") // decodes but has no separator
	require.Error(t, err)
}
