package utils

import (
	"context"
	"time"
)

// Retry ejecuta fn hasta attempts veces. La espera entre intentos empieza en delay y se
// duplica en cada fallo; tras el último intento no se espera.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
