package db

import (
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is a function that performs an action and returns an error if it fails.
type Operation func() error

// IsRetryable decides whether a failed Operation may be attempted again.
type IsRetryable func(err error) bool

const DefaultMaxRetries = 3

// Try runs op, retrying duplicate key failures up to DefaultMaxRetries times.
// Inserts that generate their own id rely on this.
func Try(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, IsMongoDuplicateKeyError)
}

// WithRetries runs op once plus up to maxRetries retries while retryable reports
// true, backing off 50ms more on each attempt.
func WithRetries(op Operation, maxRetries int, retryable IsRetryable) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == maxRetries || !retryable(err) {
			return err
		}
		log.Debug().Err(err).Int("attempt", attempt+1).Msg("Retrying operation")
		time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
	}
	return err
}

// IsMongoDuplicateKeyError reports whether err carries MongoDB error code 11000.
func IsMongoDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
