// Command bank runs the demo bank service the surge docs use as a local
// target: a mutable balance plus latency-injection routes.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/surgehq/surge/internal/bank"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	balance := flag.Int64("balance", 1_000_000, "Initial account balance")
	jitter := flag.Duration("jitter", 0, "Uniform random extra delay per request (e.g. 20ms)")
	seed := flag.Int64("seed", 0, "Jitter seed (0 means time-based)")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}

	server := bank.NewServer(bank.Options{
		InitialBalance: *balance,
		Jitter:         *jitter,
		Seed:           *seed,
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("bank server listening on %s (balance=%d, jitter=%s)", addr, *balance, *jitter)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
