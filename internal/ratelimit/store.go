// Package ratelimit holds the per-client "minimum interval between accepted
// requests" table used by the chat relay.
//
// A request is accepted when no request from the same key was accepted
// within the window. Accepting records the current time for the key; a
// rejection leaves the recorded time untouched.
package ratelimit

import "context"

// Store decides whether a request for key may proceed and, if so, records it.
type Store interface {
	Allow(ctx context.Context, key string) (bool, error)
}
