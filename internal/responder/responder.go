// Package responder answers CraveBot prompts. The only implementation
// today is canned: a route for the rider prompt and a fixed menu pick
// otherwise.
package responder

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"campus-crave/internal/route"
)

// RoutePrompt marks a request for delivery ordering rather than a food pick.
const RoutePrompt = "Sort these campus locations"

const DefaultDelay = 1500 * time.Millisecond

var ErrEmptyPrompt = errors.New("responder: empty prompt")

var Recommendations = []string{
	"I'd recommend the *Zinger Burger*! It's crispy, filling, and perfect for a quick lunch. 🍔",
	"How about *Chicken Biryani*? It's our bestseller and super spicy! 🥘",
	"You should try the *Club Sandwich*. It's light but keeps you full during classes. 🥪",
	"Go for *Masala Fries* and *Chai*! The ultimate campus comfort food combo. ☕🍟",
}

type Responder interface {
	Respond(ctx context.Context, prompt string, locations []string) (string, error)
}

type Canned struct {
	delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Canned)

func WithDelay(d time.Duration) Option {
	return func(c *Canned) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithRand fixes the source used to pick a recommendation.
func WithRand(r *rand.Rand) Option {
	return func(c *Canned) {
		if r != nil {
			c.rnd = r
		}
	}
}

func NewCanned(opts ...Option) *Canned {
	c := &Canned{delay: DefaultDelay, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Canned) Respond(ctx context.Context, prompt string, locations []string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	if c.delay > 0 {
		t := time.NewTimer(c.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if strings.Contains(prompt, RoutePrompt) {
		return route.Optimize(locations), nil
	}
	c.mu.Lock()
	i := c.rnd.Intn(len(Recommendations))
	c.mu.Unlock()
	return Recommendations[i], nil
}
