// jobboard-service
//
// Ingests job listings from registered JSON and RSS feeds, scores them against
// each user's search profile and serves the catalogue, recommendations and the
// application board over HTTP and gRPC.
//
// Commands:
//   - serve                        HTTP + gRPC servers and the cron scheduler
//   - migrate up|down|version      schema management
//   - ingest <source-id> | --all   one-shot ingestion
//   - recompute                    one recommendation pass for opted-in users
//   - sources list                 registered sources as a table
package main

import (
	"fmt"
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=…".
var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[jobboard-service] %v\n", err)
		os.Exit(1)
	}
}
