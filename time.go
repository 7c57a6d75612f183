package auth

import "time"

// Clock abstracts time so expiry and rate-limit windows are testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock used by default everywhere.
func SystemClock() Clock { return systemClock{} }
