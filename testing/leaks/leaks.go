// Package leaks holds the goleak options shared by package test mains.
package leaks

import "go.uber.org/goleak"

// spinnerCursorLoop is started by every bullets.Logger and lives for the
// rest of the process.
const spinnerCursorLoop = "github.com/sgaunet/bullets.(*SpinnerCoordinator).processCursorRequests"

// Options returns the goleak options that tolerate the logger's background goroutines.
func Options() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyFunction(spinnerCursorLoop),
	}
}
