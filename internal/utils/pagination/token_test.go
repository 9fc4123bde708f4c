package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	entryDate := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2024, 3, 9, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(entryDate, createdAt, "entry-7")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedDate, decodedCreatedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err)
	assert.Equal(t, entryDate, decodedDate)
	assert.Equal(t, createdAt, decodedCreatedAt)
	assert.Equal(t, "entry-7", decodedID)

	// Zero values survive the round trip
	zero := time.Time{}
	decodedZeroDate, decodedZeroTime, decodedEmptyID, err := DecodeToken(EncodeToken(zero, zero, ""))
	assert.NoError(t, err)
	assert.Equal(t, zero, decodedZeroDate)
	assert.Equal(t, zero, decodedZeroTime)
	assert.Empty(t, decodedEmptyID)

	now := time.Now().UTC()
	decodedNowDate, decodedNowTime, _, err := DecodeToken(EncodeToken(now, now, "d-1"))
	assert.NoError(t, err)
	assert.True(t, now.Equal(decodedNowDate))
	assert.True(t, now.Equal(decodedNowTime))
}

func TestDecodeTokenError(t *testing.T) {
	_, _, _, err := DecodeToken("this is not base64!")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	noID := base64.StdEncoding.EncodeToString([]byte("2024-03-09T00:00:00Z|2024-03-09T00:00:00Z"))
	_, _, _, err = DecodeToken(noID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	badDate := base64.StdEncoding.EncodeToString([]byte("notadate|2024-03-09T14:30:45.123456789Z|x"))
	_, _, _, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sort date parse")

	badCreated := base64.StdEncoding.EncodeToString([]byte("2024-03-09T00:00:00Z|later|x"))
	_, _, _, err = DecodeToken(badCreated)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "created_at parse")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-5))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxLimit, ClampLimit(MaxLimit+1))
}
