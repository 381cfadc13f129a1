package tui

import (
	"fmt"
	"net/url"
	"strings"
)

// ViewApp is the only view that opens a portal; anything else shows the landing splash.
const ViewApp = "app"

// Launch is what a new dashboard window was opened with.
type Launch struct {
	View  string
	Email string
}

// ParseLaunch reads "view=app&email=..." and tolerates a leading "?" or a
// full URL carrying the same query.
func ParseLaunch(raw string) (Launch, error) {
	raw = strings.TrimSpace(raw)
	if _, q, ok := strings.Cut(raw, "?"); ok {
		raw = q
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return Launch{}, fmt.Errorf("parse launch %q: %w", raw, err)
	}
	return Launch{
		View:  strings.ToLower(strings.TrimSpace(vals.Get("view"))),
		Email: strings.TrimSpace(vals.Get("email")),
	}, nil
}

func (l Launch) Portal() bool { return l.View == ViewApp }
