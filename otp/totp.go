package otp

import (
	"fmt"
	"time"
)

// Entry is one TOTP credential: a Secret plus its time window.
type Entry struct {
	secret Secret
	step   uint64
	t0     int64
}

// NewEntry builds an entry with a window of step seconds starting at the
// unix time t0. step must lie in [1, MaxStep].
func NewEntry(secret Secret, step uint64, t0 int64) (Entry, error) {
	if step == 0 || step > MaxStep {
		return Entry{}, fmt.Errorf("%w: %d", ErrInvalidTimeStep, step)
	}
	if !secret.hash.Valid() {
		return Entry{}, ErrUnsupportedHashKind
	}
	return Entry{secret: secret, step: step, t0: t0}, nil
}

// NewEntryFromBase32 decodes an RFC 4648 base32 key before building the entry.
func NewEntryFromBase32(key string, step uint64, t0 int64, digits int, hash HashKind) (Entry, error) {
	raw, err := DecodeKey(key)
	if err != nil {
		return Entry{}, err
	}
	secret, err := NewSecret(raw, digits, hash)
	zero(raw)
	if err != nil {
		return Entry{}, err
	}
	return NewEntry(secret, step, t0)
}

func (e Entry) Secret() Secret { return e.secret }
func (e Entry) Step() uint64   { return e.step }
func (e Entry) T0() int64      { return e.t0 }
func (e Entry) Digits() int    { return e.secret.digits }

// Counter is floor((unix(at) - t0) / step). Instants before t0 are rejected.
func (e Entry) Counter(at time.Time) (uint64, error) {
	if e.step == 0 {
		return 0, ErrInvalidTimeStep
	}
	now := at.Unix()
	if now < e.t0 {
		return 0, fmt.Errorf("%w: %d < %d", ErrBeforeEpoch, now, e.t0)
	}
	return (uint64(now) - uint64(e.t0)) / e.step, nil
}

// TOTP returns the RFC 6238 code valid at the given instant.
func (e Entry) TOTP(at time.Time) (uint32, error) {
	counter, err := e.Counter(at)
	if err != nil {
		return 0, err
	}
	return e.secret.HOTP(counter)
}

// Remaining is the time left before the window containing at rolls over.
func (e Entry) Remaining(at time.Time) time.Duration {
	if e.step == 0 || e.step > MaxStep || at.Unix() < e.t0 {
		return 0
	}
	elapsed := (uint64(at.Unix()) - uint64(e.t0)) % e.step
	left := time.Duration(e.step-elapsed) * time.Second
	return left - time.Duration(at.Nanosecond())
}

// Valid reports whether e was built by NewEntry rather than being a zero value.
func (e Entry) Valid() bool {
	return e.step != 0 && e.step <= MaxStep && e.secret.hash.Valid() &&
		e.secret.digits >= MinDigits && e.secret.digits <= MaxDigits
}
