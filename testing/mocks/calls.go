// Package mocks provides mock implementations for testing.
package mocks

import "sync"

// MethodCall represents a tracked method call with its arguments.
type MethodCall struct {
	Method string
	Args   map[string]any
}

// callTracker records calls in order. It is embedded by every mock.
type callTracker struct {
	mu    sync.Mutex
	calls []MethodCall
}

// GetCalls returns all tracked method calls.
func (c *callTracker) GetCalls() []MethodCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]MethodCall{}, c.calls...)
}

// GetCallCount returns the number of times a method was called.
func (c *callTracker) GetCallCount(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, call := range c.calls {
		if call.Method == method {
			count++
		}
	}
	return count
}

// GetLastCall returns the last call to the specified method, or nil if not called.
func (c *callTracker) GetLastCall(method string) *MethodCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.calls) - 1; i >= 0; i-- {
		if c.calls[i].Method == method {
			call := c.calls[i]
			return &call
		}
	}
	return nil
}

// Methods returns the names of the tracked calls in order.
func (c *callTracker) Methods() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.calls))
	for i, call := range c.calls {
		names[i] = call.Method
	}
	return names
}

// Reset clears all tracked calls.
func (c *callTracker) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = make([]MethodCall, 0)
}

func (c *callTracker) trackCall(method string, args map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, MethodCall{
		Method: method,
		Args:   args,
	})
}
