package service

import (
	"context"
	"time"
)

// SetSleep replaces the wait used between bulk items.
func SetSleep(s CardService, fn func(ctx context.Context, d time.Duration) error) {
	s.(*cardServiceImpl).sleep = fn
}
