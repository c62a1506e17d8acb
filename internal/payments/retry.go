package payments

import (
	"fmt"
	"time"
)

// retry count for read-only Stripe lookups
const lookupRetries = 3

// RetryWithBackoff retries fn with exponential backoff. Only use it for
// idempotent calls (lookups, customer resolution); the confirm step is
// never wrapped because Stripe's idempotency key already covers it.
func (c *Client) RetryWithBackoff(fn func() error, maxRetries int) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
