package testhelpers

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/standardbeagle/edk2meta/internal/config"
)

// createTestConfig creates a WorkspaceConfig rooted at tempDir, with no
// PACKAGES_PATH entries, suitable as a starting point for factory/postproc
// tests that need a config but don't care about its contents.
func createTestConfig(tempDir string) *config.WorkspaceConfig {
	return &config.WorkspaceConfig{
		WorkspaceRoot: tempDir,
	}
}

// WaitFor waits for a condition to become true with timeout.
// Usage:
//
//	testhelpers.WaitFor(t, func() bool {
//	    return watcher.Ready()
//	}, 5*time.Second)
func WaitFor(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
			if time.Now().After(deadline) {
				t.Fatalf("Condition not met within %v", timeout)
				return
			}
		}
	}
}

// RetryOptions configures retry behavior.
type RetryOptions struct {
	MaxAttempts int           // Maximum number of attempts
	BaseDelay   time.Duration // Base delay for exponential backoff
	MaxDelay    time.Duration // Maximum delay between attempts
	Jitter      bool          // Vary delays by a fixed amount per attempt (-20% on odd, +10% on even attempts)
	Timeout     time.Duration // Total timeout for all attempts
}

// RetryWithBackoff retries a function with exponential backoff.
func RetryWithBackoff(t *testing.T, opts RetryOptions, fn func() error) error {
	t.Helper()

	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseDelay == 0 {
		opts.BaseDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay == 0 {
		opts.MaxDelay = 5 * time.Second
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	var lastErr error
	start := time.Now()

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if time.Since(start) > opts.Timeout {
			return fmt.Errorf("timeout after %v (attempt %d/%d): last error: %v",
				time.Since(start), attempt, opts.MaxAttempts, lastErr)
		}

		err := fn()
		if err == nil {
			if attempt > 1 {
				t.Logf("Succeeded on attempt %d/%d", attempt, opts.MaxAttempts)
			}
			return nil
		}

		lastErr = err

		if attempt == opts.MaxAttempts {
			t.Logf("Failed after %d attempts: %v", attempt, err)
			return err
		}

		delay := time.Duration(1<<uint(attempt-1)) * opts.BaseDelay
		if delay > opts.MaxDelay {
			delay = opts.MaxDelay
		}

		if opts.Jitter {
			jitter := time.Duration(float64(delay) * (0.1 + 0.1*float64(attempt%2)))
			if attempt%2 == 0 {
				delay += jitter
			} else {
				delay -= jitter
			}
		}

		t.Logf("Attempt %d/%d failed: %v, retrying in %v...",
			attempt, opts.MaxAttempts, err, delay)

		waitCh := make(chan struct{})
		go func() {
			defer close(waitCh)
			time.Sleep(delay)
		}()

		select {
		case <-waitCh:
		case <-time.After(opts.Timeout):
			return fmt.Errorf("timeout exceeded while retrying: %v", err)
		}
	}

	return lastErr
}

// WaitForWithJitter waits for a condition with exponential backoff retry.
func WaitForWithJitter(t *testing.T, opts RetryOptions, condition func() bool) error {
	return RetryWithBackoff(t, opts, func() error {
		if condition() {
			return nil
		}
		return errors.New("condition not yet met")
	})
}

// NoRetry returns RetryOptions for a single attempt, for RetryWithBackoff or
// WaitForWithJitter without retry.
func NoRetry() RetryOptions {
	return RetryOptions{
		MaxAttempts: 1,
		Timeout:     1 * time.Minute,
	}
}

// WaitForCleanup sleeps a fixed 100ms to let goroutines exit, then checks
// for leaks; the timeout argument is not used.
func WaitForCleanup(t *testing.T, timeout time.Duration) {
	t.Helper()

	time.Sleep(100 * time.Millisecond)

	if err := goleak.Find(goleak.IgnoreCurrent()); err != nil {
		t.Errorf("Goroutine leak detected: %v", err)
	}
}

// MarkFlaky marks a test as flaky with a reason.
func MarkFlaky(t *testing.T, reason string) {
	t.Helper()
	t.Logf("FLAKY TEST: %s", reason)
}

// AssertNoLeaks verifies no goroutine leaks occurred during the test.
func AssertNoLeaks(t *testing.T) {
	t.Helper()

	ignore := goleak.IgnoreCurrent()

	if err := goleak.Find(ignore); err != nil {
		t.Errorf("Goroutine leak detected: %v", err)
	}
}

// SkipIfShort skips the test if -short flag is provided.
func SkipIfShort(t *testing.T, reason string) {
	t.Helper()
	if testing.Short() {
		t.Skipf("Skipping in short mode: %s", reason)
	}
}
