// Package filter implements the subscriber envelope matching engine.
package filter

import (
	"slices"

	"webhook_feed/internal/model"
)

// Match checks whether an envelope passes a subscriber's allow-list.
// A nil allow-list passes everything. Otherwise the envelope type or, for
// pokemon, its seen type must be listed.
func Match(env model.Envelope, allow []string) bool {
	if allow == nil {
		return true
	}
	if slices.Contains(allow, string(env.Type)) {
		return true
	}
	if seen := env.SeenType(); seen != "" {
		return slices.Contains(allow, string(seen))
	}
	return false
}

// Select returns the envelopes that pass allow, preserving order. The input
// is not modified.
func Select(events []model.Envelope, allow []string) []model.Envelope {
	if allow == nil {
		return events
	}
	var out []model.Envelope
	for _, env := range events {
		if Match(env, allow) {
			out = append(out, env)
		}
	}
	return out
}
