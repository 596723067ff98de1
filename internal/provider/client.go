package provider

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"
)

// Options configures a Client.
type Options struct {
	// Credentials is the ordered key list rotated over. Empty means
	// offline: every call answers from the fallback.
	Credentials []string
	// LastKeyIndex is the persisted index of the last key that
	// succeeded; rotation starts there.
	LastKeyIndex int
	Policy       RetryPolicy
	CacheTTL     time.Duration
	Logger       *log.Logger
}

// Client is the resilient content provider client. All transient
// provider faults are absorbed here; Generate returns an error only
// for malformed requests.
type Client struct {
	transport Transport
	creds     []string
	policy    RetryPolicy
	cache     *responseCache
	logger    *log.Logger

	mu       sync.Mutex
	lastGood int

	// test seams
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// New builds a client over the given transport.
func New(t Transport, opts Options) *Client {
	if opts.Policy == (RetryPolicy{}) {
		opts.Policy = DefaultPolicy()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	last := opts.LastKeyIndex
	if last < 0 || last >= len(opts.Credentials) {
		last = 0
	}
	return &Client{
		transport: t,
		creds:     opts.Credentials,
		policy:    opts.Policy,
		cache:     newResponseCache(opts.CacheTTL),
		logger:    opts.Logger,
		lastGood:  last,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// LastKeyIndex returns the index of the last credential that produced
// a valid result, for persistence across sessions.
func (c *Client) LastKeyIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastGood
}

// RestoreKeyIndex seeds rotation from a persisted index. Out-of-range
// values are ignored.
func (c *Client) RestoreKeyIndex(i int) {
	if i < 0 || i >= len(c.creds) {
		return
	}
	c.mu.Lock()
	c.lastGood = i
	c.mu.Unlock()
}

// SweepCache evicts stale response cache entries.
func (c *Client) SweepCache(now time.Time) int {
	return c.cache.sweep(now)
}

// Generate resolves a structured prompt into a result. It rotates over
// the credential list starting at the last successful key, classifies
// each failure, and degrades to the deterministic fallback instead of
// surfacing transient faults. The only errors it returns are malformed
// requests.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	if !req.Intent.IsValid() {
		return nil, errors.New("provider: request has no valid intent")
	}
	if req.Prompt == "" {
		return nil, errors.New("provider: request has an empty prompt")
	}

	key := fingerprint(req)
	if res, ok := c.cache.get(key, c.now()); ok {
		return res, nil
	}

	if len(c.creds) == 0 {
		return fallbackResult(req), nil
	}

	payload := Payload{System: systemPersona, Prompt: req.Prompt}

	c.mu.Lock()
	start := c.lastGood
	c.mu.Unlock()

	transient := 0
	for i := 0; i < len(c.creds); i++ {
		idx := (start + i) % len(c.creds)

		res, err := c.attempt(ctx, req, c.creds[idx], payload)
		if err == nil {
			c.mu.Lock()
			c.lastGood = idx
			c.mu.Unlock()
			c.cache.put(key, res, c.now())
			return res, nil
		}

		var se *StatusError
		if errors.As(err, &se) && keyExhausted(se.Code) {
			// This key is rejected or rate limited; move on without
			// spending the transient budget.
			c.logger.Printf("key %d exhausted (%d), rotating", idx, se.Code)
			continue
		}

		transient++
		c.logger.Printf("transient provider fault on key %d: %v", idx, err)
		if transient > c.policy.MaxTransient {
			break
		}
		if err := c.sleep(ctx, c.policy.Backoff); err != nil {
			break
		}
	}

	c.logger.Printf("provider unavailable for %s, serving fallback", req.Intent)
	return fallbackResult(req), nil
}

// attempt performs one bounded transport call and validates its
// output. Schema mismatches are returned as errors so they count as
// failures for retry purposes.
func (c *Client) attempt(ctx context.Context, req Request, cred string, p Payload) (*Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.policy.AttemptTimeout)
	defer cancel()

	raw, err := c.transport.Send(attemptCtx, cred, p)
	if err != nil {
		return nil, err
	}
	return parseResult(req.Intent, raw)
}
