package auth

import (
	"crypto/rand"
	"math/big"
	"time"
)

// LoginDelay pads failed logins to a common minimum duration so "unknown email"
// and "wrong password" cannot be told apart by response time.
type LoginDelay struct {
	base   time.Duration
	jitter time.Duration
	sleep  func(time.Duration)
}

// NewLoginDelay creates a LoginDelay; jitter of zero disables the random component
func NewLoginDelay(base, jitter time.Duration) *LoginDelay {
	return &LoginDelay{
		base:   base,
		jitter: jitter,
		sleep:  time.Sleep,
	}
}

// target returns base plus a crypto/rand jitter in [0, jitter)
func (d *LoginDelay) target() time.Duration {
	if d.jitter <= 0 {
		return d.base
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(d.jitter)))
	if err != nil {
		return d.base
	}
	return d.base + time.Duration(n.Int64())
}

// WaitFrom sleeps until at least the target delay has elapsed since start.
// Successful attempts return immediately.
func (d *LoginDelay) WaitFrom(start time.Time, success bool) {
	if d == nil || success {
		return
	}

	if remaining := d.target() - time.Since(start); remaining > 0 {
		d.sleep(remaining)
	}
}
