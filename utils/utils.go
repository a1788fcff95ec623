package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	retryBaseInterval = 1 * time.Second
	retryMaxInterval  = 60 * time.Second
)

// ErrNotRetryable marks an error that Retry must surface immediately,
// retrying a malformed payload wastes quota and will not succeed.
var ErrNotRetryable = errors.New("not retryable")

// Retry runs fn up to attempts times with capped exponential backoff.
// Errors wrapping ErrNotRetryable abort the loop at once.
func Retry(attempts int, fn func() (any, error)) (any, error) {
	var err error
	interval := retryBaseInterval
	for i := 0; i < attempts; i++ {
		var result any
		result, err = fn()
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrNotRetryable) {
			return nil, err
		}
		if i == attempts-1 {
			break
		}
		logrus.Infof("attempt %d/%d is err: %v, retry after %v", i+1, attempts, err, interval)
		time.Sleep(interval)
		interval *= 2
		if interval > retryMaxInterval {
			interval = retryMaxInterval
		}
	}
	return nil, fmt.Errorf("retry %d times is not ok: %w", attempts, err)
}

func ComposeTableName(schema string, tableName string) string {
	return fmt.Sprintf("%s.%s", schema, tableName)
}
