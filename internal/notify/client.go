package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/pkg/logger"
	"github.com/valyala/fasthttp"
)

const (
	HeaderEventID   = "X-Event-Id"
	HeaderEventType = "X-Event-Type"
)

var (
	ErrNoEndpoints       = errors.New("no notification endpoint configured")
	ErrNoAvailableTarget = errors.New("no available notification endpoint")
)

type EndpointConfig struct {
	Name   string
	URL    string
	Weight int
}

type Config struct {
	Endpoints               []EndpointConfig
	Timeout                 time.Duration
	MaxRetries              int
	RetryDelay              time.Duration
	MaxConns                int
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	EvaluateInterval        time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:                 5 * time.Second,
		MaxRetries:              2,
		RetryDelay:              200 * time.Millisecond,
		MaxConns:                100,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   time.Minute,
		EvaluateInterval:        30 * time.Second,
	}
}

// Client delivers events to the best scoring webhook endpoint, retrying on
// the next best one and opening a circuit on endpoints that keep failing.
type Client struct {
	cfg       Config
	endpoints []*Endpoint
	now       func() time.Time
	log       logger.Logger

	stopCh chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewClient skips endpoints without a URL and fails when none remain.
func NewClient(cfg Config) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		now:    time.Now,
		log:    logger.With("component", "notify"),
		stopCh: make(chan struct{}),
	}
	for _, ec := range cfg.Endpoints {
		if ec.URL == "" {
			continue
		}
		hc := &fasthttp.Client{
			MaxConnsPerHost:     cfg.MaxConns,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		}
		c.endpoints = append(c.endpoints, NewEndpoint(ec.Name, ec.URL, ec.Weight, hc))
		c.log.Info("notification endpoint registered", "name", ec.Name, "url", ec.URL, "weight", ec.Weight)
	}
	if len(c.endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	if cfg.EvaluateInterval > 0 {
		c.wg.Add(1)
		go c.evaluator()
	}
	return c, nil
}

// Select returns the available endpoint with the highest score.
func (c *Client) Select() (*Endpoint, error) {
	now := c.now()
	var best *Endpoint
	var bestScore float64
	for _, e := range c.endpoints {
		if !e.Available(now) {
			continue
		}
		if s := e.Score(now); best == nil || s > bestScore {
			best, bestScore = e, s
		}
	}
	if best == nil {
		return nil, ErrNoAvailableTarget
	}
	return best, nil
}

// Deliver posts the event envelope. A 2xx answer from any endpoint counts as
// delivered.
func (c *Client) Deliver(ctx context.Context, ev events.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		e, err := c.Select()
		if err != nil {
			lastErr = err
			continue
		}

		start := time.Now()
		err = c.post(ctx, e, ev, body)
		if err != nil {
			e.stats.RecordFailure()
			c.checkCircuitBreaker(e)
			c.log.Warn("event delivery failed", "endpoint", e.name, "event_id", ev.ID, "attempt", attempt+1, "error", err)
			lastErr = err
			continue
		}
		e.stats.RecordSuccess(time.Since(start).Milliseconds())
		c.log.Debug("event delivered", "endpoint", e.name, "event_id", ev.ID, "type", ev.Type)
		return nil
	}
	return fmt.Errorf("deliver %s after %d attempts: %w", ev.ID, c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) post(ctx context.Context, e *Endpoint, ev events.Event, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(e.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(HeaderEventID, ev.ID)
	req.Header.Set(HeaderEventType, string(ev.Type))
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.cfg.Timeout)
	}
	if err := e.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("unexpected status code %d", code)
	}
	return nil
}

func (c *Client) checkCircuitBreaker(e *Endpoint) {
	fails := e.stats.ConsecutiveFails.Load()
	if c.cfg.CircuitBreakerThreshold <= 0 || fails < int32(c.cfg.CircuitBreakerThreshold) {
		return
	}
	e.setState(StateCircuitOpen)
	e.openUntil.Store(c.now().Add(c.cfg.CircuitBreakerTimeout).Unix())
	c.log.Warn("circuit breaker opened", "endpoint", e.name, "consecutive_fails", fails, "timeout", c.cfg.CircuitBreakerTimeout)
}

func (c *Client) evaluator() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.cfg.EvaluateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evaluate()
		case <-c.stopCh:
			return
		}
	}
}

// evaluate demotes slow or failing endpoints and promotes recovered ones.
func (c *Client) evaluate() {
	for _, e := range c.endpoints {
		if e.State() == StateCircuitOpen {
			continue
		}
		rate := e.stats.SuccessRate()
		avg := e.stats.AvgLatencyMs()
		switch {
		case rate < 0.8 || avg > 5000:
			if e.State() != StateDegraded {
				e.setState(StateDegraded)
				c.log.Warn("endpoint degraded", "endpoint", e.name, "success_rate", rate, "avg_latency_ms", avg)
			}
		case rate > 0.95 && avg < 2000:
			if e.State() != StateHealthy {
				e.setState(StateHealthy)
				c.log.Info("endpoint recovered", "endpoint", e.name)
			}
		}
	}
}

type Stats struct {
	Name             string
	State            string
	Score            float64
	TotalRequests    int64
	Delivered        int64
	Failed           int64
	SuccessRate      float64
	AvgLatencyMs     int64
	P95LatencyMs     int64
	ConsecutiveFails int32
}

// Stats lists the endpoints best first.
func (c *Client) Stats() []Stats {
	now := c.now()
	out := make([]Stats, 0, len(c.endpoints))
	for _, e := range c.endpoints {
		out = append(out, Stats{
			Name:             e.name,
			State:            e.State().String(),
			Score:            e.Score(now),
			TotalRequests:    e.stats.TotalRequests.Load(),
			Delivered:        e.stats.Delivered.Load(),
			Failed:           e.stats.Failed.Load(),
			SuccessRate:      e.stats.SuccessRate(),
			AvgLatencyMs:     e.stats.AvgLatencyMs(),
			P95LatencyMs:     e.stats.P95LatencyMs(),
			ConsecutiveFails: e.stats.ConsecutiveFails.Load(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (c *Client) Close() error {
	c.once.Do(func() { close(c.stopCh) })
	c.wg.Wait()
	return nil
}
