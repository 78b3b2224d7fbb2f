// Package goroutine provides panic-safe goroutine launching.
package goroutine

import (
	"runtime/debug"

	"averon/internal/shared/logger"
)

// SafeGo runs fn on a new goroutine and converts a panic into an error log
// with the stack attached. Fleet passes fan out one goroutine per server, so
// a single panicking pass must not take the whole engine down.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", r,
					"stack", string(debug.Stack()),
				)
			}
		}()
		fn()
	}()
}
