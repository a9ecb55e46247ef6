package authflow

import (
	"sync"
	"time"
)

// resendCooldown is the cancellable countdown between consecutive
// one-time-code resends. One instance is owned by the controller; the
// ticking goroutine exists only while the count is above zero and is
// torn down on Stop, on reaching zero, and on controller Close.
type resendCooldown struct {
	interval time.Duration

	mu        sync.Mutex
	remaining int
	stop      chan struct{}
	running   bool
	wg        sync.WaitGroup
}

func newResendCooldown(interval time.Duration) *resendCooldown {
	if interval <= 0 {
		interval = time.Second
	}
	return &resendCooldown{interval: interval}
}

// Start sets the countdown to seconds and ensures a ticker goroutine
// is running. Calling Start while a countdown is active resets the
// remaining time without spawning a second goroutine.
func (c *resendCooldown) Start(seconds int) {
	if c == nil || seconds <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.remaining = seconds
	if c.running {
		return
	}

	c.stop = make(chan struct{})
	c.running = true
	c.wg.Add(1)
	go c.run(c.stop)
}

func (c *resendCooldown) run(stop chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if c.tick() == 0 {
				return
			}
		case <-stop:
			return
		}
	}
}

// tick decrements once and returns the new remaining value. The ticker
// goroutine exits when it reaches zero; it is not recreated until the
// next Start.
func (c *resendCooldown) tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.running = false
	}
	return c.remaining
}

// Remaining reports the seconds left; zero means a resend is allowed.
func (c *resendCooldown) Remaining() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop cancels the countdown and waits for the ticker goroutine to
// exit. Safe to call repeatedly and with no countdown active. Stopping
// has no effect on session or challenge state.
func (c *resendCooldown) Stop() {
	if c == nil {
		return
	}

	c.mu.Lock()
	if !c.running {
		c.remaining = 0
		c.mu.Unlock()
		return
	}
	c.running = false
	c.remaining = 0
	close(c.stop)
	c.mu.Unlock()

	c.wg.Wait()
}
