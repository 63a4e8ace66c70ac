package services

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseSequence_Next(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.Sequence{Name: "cards", Prefix: "X-", Padding: 4, NumberNext: 7}).Error)
	sequence := NewDatabaseSequence()
	ctx := context.Background()

	first, err := sequence.Next(ctx, db, "cards")
	require.NoError(t, err)
	second, err := sequence.Next(ctx, db, "cards")
	require.NoError(t, err)

	assert.Equal(t, "X-0007", first)
	assert.Equal(t, "X-0008", second)

	_, err = sequence.Next(ctx, db, "missing")
	assert.ErrorIs(t, err, errors.ErrConfiguration)
}

func TestRedisSequence_Next(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.Sequence{Name: "cards", Prefix: "GC", Padding: 6}).Error)

	client, redisMock := redismock.NewClientMock()
	keys := []string{"giftcard:sequence:cards"}
	redisMock.ExpectEvalSha(nextNumberScript.Hash(), keys, int64(0)).SetVal(int64(41))
	redisMock.ExpectEvalSha(nextNumberScript.Hash(), keys, int64(41)).SetVal(int64(42))

	sequence := NewRedisSequence(client)
	ctx := context.Background()

	first, err := sequence.Next(ctx, db, "cards")
	require.NoError(t, err)
	second, err := sequence.Next(ctx, db, "cards")
	require.NoError(t, err)

	assert.Equal(t, "GC000041", first)
	assert.Equal(t, "GC000042", second)
	assert.NoError(t, redisMock.ExpectationsWereMet())

	var stored models.Sequence
	require.NoError(t, db.First(&stored, "name = ?", "cards").Error)
	assert.Equal(t, int64(43), stored.NumberNext)
}

func TestRedisSequence_ContinuesAfterDatabaseSequence(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.Sequence{Name: "cards", Prefix: "GC", Padding: 4, NumberNext: 1}).Error)
	ctx := context.Background()

	database := NewDatabaseSequence()
	for _, want := range []string{"GC0001", "GC0002"} {
		number, err := database.Next(ctx, db, "cards")
		require.NoError(t, err)
		require.Equal(t, want, number)
	}

	client, redisMock := redismock.NewClientMock()
	redisMock.ExpectEvalSha(nextNumberScript.Hash(), []string{"giftcard:sequence:cards"}, int64(2)).SetVal(int64(3))

	number, err := NewRedisSequence(client).Next(ctx, db, "cards")
	require.NoError(t, err)
	assert.Equal(t, "GC0003", number)
	assert.NoError(t, redisMock.ExpectationsWereMet())

	number, err = database.Next(ctx, db, "cards")
	require.NoError(t, err)
	assert.Equal(t, "GC0004", number)
}

func TestRedisSequence_RedisFailure(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.Sequence{Name: "cards", Prefix: "GC", Padding: 6}).Error)

	client, redisMock := redismock.NewClientMock()
	redisMock.ExpectEvalSha(nextNumberScript.Hash(), []string{"giftcard:sequence:cards"}, int64(0)).SetErr(assert.AnError)

	_, err := NewRedisSequence(client).Next(context.Background(), db, "cards")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.StatusCode)
}

func TestGiftCardService_ActivateWithRedisSequence(t *testing.T) {
	client, redisMock := redismock.NewClientMock()
	redisMock.ExpectEvalSha(nextNumberScript.Hash(), []string{"giftcard:sequence:gift_card"}, int64(0)).SetVal(int64(1))

	f := newFixture(t, withSequence(NewRedisSequence(client)))
	card := f.activeCard(t, "10")

	assert.Equal(t, "GC00000001", *card.Number)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
