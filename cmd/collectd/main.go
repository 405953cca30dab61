// Command collectd runs the HTTP/WebSocket control plane (spec §6.4) as
// a standalone daemon, submitting CollectionConfigs to the core engine
// and exposing job progress/results to remote callers.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"collector/internal/httpapi"
)

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	flag.Parse()

	srv := httpapi.NewServer()
	fmt.Printf("collectd listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, srv); err != nil {
		fmt.Fprintf(os.Stderr, "collectd exited: %v\n", err)
		os.Exit(1)
	}
}
