// Package subscriber parses the webhook receiver list and derives which
// entity kinds must be fetched to serve it.
package subscriber

import (
	"fmt"
	"slices"
	"strings"

	"webhook_feed/internal/model"
)

// Subscriber is one webhook destination. A nil Types receives every event.
type Subscriber struct {
	URL   string
	Types []string
}

// Unfiltered reports whether the subscriber receives every event.
func (s Subscriber) Unfiltered() bool {
	return s.Types == nil
}

// FetchSet lists the entity kinds and creature seen types to query.
type FetchSet struct {
	Types     []model.EventType
	SeenTypes []model.SeenType
}

// Has reports whether kind must be fetched. Pokemon are fetched when any
// seen type is wanted.
func (f FetchSet) Has(kind model.EventType) bool {
	if kind == model.EventPokemon {
		return len(f.SeenTypes) > 0
	}
	return slices.Contains(f.Types, kind)
}

// Registry is the immutable set of subscribers.
type Registry struct {
	subs []Subscriber
}

// Parse reads a comma separated receiver list. Each entry is a URL with an
// optional leading "[type type ...]" allow-list. Empty brackets mean no
// filtering, and "pokemon" in an allow-list implies "encounter".
func Parse(list string) (*Registry, error) {
	r := &Registry{}
	for i, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		sub, err := parseEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("webhook %d: %w", i+1, err)
		}
		r.subs = append(r.subs, sub)
	}
	return r, nil
}

func parseEntry(entry string) (Subscriber, error) {
	var sub Subscriber
	url := entry
	if rest, ok := strings.CutPrefix(entry, "["); ok {
		raw, after, found := strings.Cut(rest, "]")
		if !found {
			return sub, fmt.Errorf("unterminated type list in %q", entry)
		}
		url = after
		if types := strings.Fields(raw); len(types) > 0 {
			if slices.Contains(types, string(model.EventPokemon)) && !slices.Contains(types, string(model.SeenEncounter)) {
				types = append(types, string(model.SeenEncounter))
			}
			sub.Types = types
		}
	}
	sub.URL = strings.ReplaceAll(url, " ", "")
	if sub.URL == "" {
		return sub, fmt.Errorf("missing url in %q", entry)
	}
	return sub, nil
}

// Subscribers returns the subscribers in configuration order.
func (r *Registry) Subscribers() []Subscriber {
	return r.subs
}

// Len returns the number of subscribers.
func (r *Registry) Len() int {
	return len(r.subs)
}

// FetchSet derives the kinds to query from every subscriber's allow-list.
// An unfiltered subscriber, or one allowing "pokemon", needs every seen type.
func (r *Registry) FetchSet() FetchSet {
	types := make(map[model.EventType]bool)
	seen := make(map[model.SeenType]bool)

	for _, sub := range r.subs {
		if sub.Unfiltered() {
			for _, t := range model.EventTypes {
				types[t] = true
			}
			for _, st := range model.SeenTypes {
				seen[st] = true
			}
			continue
		}
		for _, name := range sub.Types {
			if slices.Contains(model.EventTypes, model.EventType(name)) {
				types[model.EventType(name)] = true
			}
			if slices.Contains(model.SeenTypes, model.SeenType(name)) {
				seen[model.SeenType(name)] = true
			}
		}
		if slices.Contains(sub.Types, string(model.EventPokemon)) {
			for _, st := range model.SeenTypes {
				seen[st] = true
			}
		}
	}

	var fs FetchSet
	for _, t := range model.EventTypes {
		if types[t] {
			fs.Types = append(fs.Types, t)
		}
	}
	for _, st := range model.SeenTypes {
		if seen[st] {
			fs.SeenTypes = append(fs.SeenTypes, st)
		}
	}
	return fs
}
