// Package bank implements the demo service under test: a toy account with a
// mutable balance and routes with injectable latency. It exists so the
// harness has a realistic local target; it is not part of the load-generation
// core.
package bank

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxDelayMs = 60_000

// Options configure the demo server.
type Options struct {
	// InitialBalance seeds the account.
	InitialBalance int64
	// Jitter adds a uniform random delay in [0, Jitter) to every route.
	Jitter time.Duration
	// Seed conditions the jitter source; 0 means time-based.
	Seed int64
}

// Server holds the account state. The balance is owned by the Server and
// only ever touched under its mutex; handlers never share it unguarded.
type Server struct {
	mu      sync.Mutex
	balance int64

	jitter time.Duration
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewServer(opt Options) *Server {
	seed := opt.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Server{
		balance: opt.InitialBalance,
		jitter:  opt.Jitter,
		rnd:     rand.New(rand.NewSource(seed)),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/balance", s.handleBalance)
	mux.HandleFunc("/deposit", s.handleDeposit)
	mux.HandleFunc("/withdraw", s.handleWithdraw)
	mux.HandleFunc("/delay/", s.handleDelay)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Balance returns the current account balance.
func (s *Server) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	s.sleep()
	respondJSON(w, http.StatusOK, map[string]any{"balance": s.Balance()})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	amount, ok := s.mutationAmount(w, r)
	if !ok {
		return
	}
	s.sleep()

	s.mu.Lock()
	s.balance += amount
	balance := s.balance
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{"balance": balance})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	amount, ok := s.mutationAmount(w, r)
	if !ok {
		return
	}
	s.sleep()

	s.mu.Lock()
	if s.balance < amount {
		balance := s.balance
		s.mu.Unlock()
		respondJSON(w, http.StatusConflict, map[string]any{
			"error":   "insufficient funds",
			"balance": balance,
		})
		return
	}
	s.balance -= amount
	balance := s.balance
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{"balance": balance})
}

// handleDelay serves /delay/{ms}: sleep the requested milliseconds, then 200.
func (s *Server) handleDelay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/delay/")
	ms, err := strconv.Atoi(raw)
	if err != nil || ms < 0 || ms > maxDelayMs {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "delay must be 0.." + strconv.Itoa(maxDelayMs) + " ms"})
		return
	}
	s.sleep()
	time.Sleep(time.Duration(ms) * time.Millisecond)
	respondJSON(w, http.StatusOK, map[string]any{"delayed_ms": ms})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) mutationAmount(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if r.Method != http.MethodPost {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return 0, false
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return 0, false
	}
	if req.Amount <= 0 {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "amount must be > 0"})
		return 0, false
	}
	return req.Amount, true
}

func (s *Server) sleep() {
	if s.jitter <= 0 {
		return
	}
	s.rndMu.Lock()
	d := time.Duration(s.rnd.Int63n(int64(s.jitter)))
	s.rndMu.Unlock()
	time.Sleep(d)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
