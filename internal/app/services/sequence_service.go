package services

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceGenerator hands out unique numbers from a named sequence. Numbers
// are unique across concurrent callers.
type SequenceGenerator interface {
	Next(ctx context.Context, tx *gorm.DB, name string) (string, error)
}

// NewSequenceGenerator picks the sequence backend from configuration.
func NewSequenceGenerator(redisClient *redis.Client) SequenceGenerator {
	if infrastructures.Config != nil && infrastructures.Config.SEQUENCE_BACKEND == "redis" {
		return NewRedisSequence(redisClient)
	}
	return NewDatabaseSequence()
}

func loadSequence(tx *gorm.DB, name string, lock bool) (*models.Sequence, error) {
	query := tx
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var sequence models.Sequence
	if err := query.Where("name = ?", name).First(&sequence).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewConfigurationError(fmt.Sprintf("Number sequence %s is not defined", name))
		}
		return nil, errors.NewInternalServerError(err, "Failed to get number sequence")
	}
	return &sequence, nil
}

// DatabaseSequence advances a row-locked counter inside the caller's
// transaction.
type DatabaseSequence struct{}

func NewDatabaseSequence() *DatabaseSequence {
	return &DatabaseSequence{}
}

func (s *DatabaseSequence) Next(ctx context.Context, tx *gorm.DB, name string) (string, error) {
	sequence, err := loadSequence(tx.WithContext(ctx), name, true)
	if err != nil {
		return "", err
	}

	number := sequence.NumberNext
	if err := tx.WithContext(ctx).Model(sequence).Update("number_next", number+1).Error; err != nil {
		return "", errors.NewInternalServerError(err, "Failed to advance number sequence")
	}

	return sequence.Format(number), nil
}

// nextNumberScript raises the counter to the floor passed in ARGV[1] before
// incrementing it, so a key that is missing or behind the database row never
// hands out a number that was already issued.
var nextNumberScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if current < floor then
	redis.call("SET", KEYS[1], floor)
end
return redis.call("INCR", KEYS[1])
`)

// RedisSequence draws numbers with INCR. The database row supplies the prefix,
// the padding and the floor, and number_next is moved past every drawn number.
type RedisSequence struct {
	redis *redis.Client
}

func NewRedisSequence(redisClient *redis.Client) *RedisSequence {
	return &RedisSequence{
		redis: redisClient,
	}
}

func (s *RedisSequence) Next(ctx context.Context, tx *gorm.DB, name string) (string, error) {
	sequence, err := loadSequence(tx.WithContext(ctx), name, false)
	if err != nil {
		return "", err
	}

	number, err := nextNumberScript.Run(ctx, s.redis, []string{sequenceKey(name)}, sequence.NumberNext-1).Int64()
	if err != nil {
		return "", errors.NewInternalServerError(err, "Failed to draw from number sequence")
	}

	if err := tx.WithContext(ctx).Model(&models.Sequence{}).
		Where("name = ? AND number_next <= ?", name, number).
		Update("number_next", number+1).Error; err != nil {
		return "", errors.NewInternalServerError(err, "Failed to advance number sequence")
	}

	return sequence.Format(number), nil
}

func sequenceKey(name string) string {
	return fmt.Sprintf("giftcard:sequence:%s", name)
}
