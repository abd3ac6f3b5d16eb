// Package selector picks the endpoint and request shape for each dispatched
// request.
package selector

import (
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
)

// Mode controls how endpoints are drawn from the pool.
type Mode string

const (
	// ModeRandom picks uniformly at random with replacement, simulating a
	// mixed-traffic workload.
	ModeRandom Mode = "random"
	// ModeSequential iterates the pool in order, round-robin over the
	// request index, for benchmarking endpoints individually.
	ModeSequential Mode = "sequential"
)

// mutatingPayload is the fixed body sent to every mutating endpoint.
const mutatingPayload = `{"amount": 1}`

// Plan describes one request to issue: where, with which verb, and with
// which body (empty for reads).
type Plan struct {
	Endpoint string
	Method   string
	Body     string
}

// MethodTable maps endpoint identifiers to HTTP verbs. Endpoints absent from
// the table default to GET with no body; entries mapped to POST carry the
// fixed JSON payload. The mapping is data, so callers can extend it without
// touching selection logic.
type MethodTable map[string]string

// DefaultMethodTable covers the demo bank SUT's mutating routes.
func DefaultMethodTable() MethodTable {
	return MethodTable{
		"/deposit":  http.MethodPost,
		"/withdraw": http.MethodPost,
	}
}

// MethodFor resolves the verb for an endpoint, defaulting to GET.
func (t MethodTable) MethodFor(endpoint string) string {
	if t != nil {
		if m, ok := t[endpoint]; ok && strings.TrimSpace(m) != "" {
			return strings.ToUpper(strings.TrimSpace(m))
		}
	}
	return http.MethodGet
}

// Selector maps a request index to a Plan using the configured policy.
type Selector struct {
	pool    []string
	methods MethodTable
	mode    Mode

	mu  sync.Mutex
	rnd *rand.Rand
}

// New builds a Selector over a non-empty pool. The rand source is injected
// so tests can seed it deterministically; it may be nil for ModeSequential.
func New(pool []string, methods MethodTable, mode Mode, rnd *rand.Rand) (*Selector, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("endpoint pool must not be empty")
	}
	switch mode {
	case ModeRandom, ModeSequential:
	default:
		return nil, fmt.Errorf("selection mode %q is not supported", mode)
	}
	if mode == ModeRandom && rnd == nil {
		return nil, fmt.Errorf("random mode requires a rand source")
	}
	if methods == nil {
		methods = DefaultMethodTable()
	}
	return &Selector{
		pool:    append([]string(nil), pool...),
		methods: methods,
		mode:    mode,
		rnd:     rnd,
	}, nil
}

// Pool returns the configured endpoint pool.
func (s *Selector) Pool() []string {
	return append([]string(nil), s.pool...)
}

// Pick returns the Plan for the i-th request of the run.
func (s *Selector) Pick(i int) Plan {
	var endpoint string
	switch s.mode {
	case ModeSequential:
		endpoint = s.pool[i%len(s.pool)]
	default:
		s.mu.Lock()
		endpoint = s.pool[s.rnd.Intn(len(s.pool))]
		s.mu.Unlock()
	}

	method := s.methods.MethodFor(endpoint)
	plan := Plan{Endpoint: endpoint, Method: method}
	if method != http.MethodGet {
		plan.Body = mutatingPayload
	}
	return plan
}

// ParseMode validates a mode string from configuration.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeRandom, "":
		return ModeRandom, nil
	case ModeSequential:
		return ModeSequential, nil
	default:
		return "", fmt.Errorf("selection mode %q is not supported (use random or sequential)", raw)
	}
}
