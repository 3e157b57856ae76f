package client

import (
	"context"
	"time"
)

const (
	backoffBase = time.Second
	backoffCap  = 5 * time.Second
	// jitterDivisor yields 10% jitter on top of the exponential delay.
	jitterDivisor = 10
)

// retryDelay computes the exponential backoff before retry attempt n
// (0-based): 1s, 2s, 4s, capped at 5s, with 10% jitter.
func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := backoffBase
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= backoffCap {
			delay = backoffCap
			break
		}
	}

	jitterRange := delay / jitterDivisor
	if jitterRange > 0 {
		jitter := time.Duration(time.Now().UnixNano() % int64(jitterRange))
		delay += jitter - jitterRange/2
	}

	return delay
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
