package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/df07/go-blackhole-raymarcher/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	workers := flag.Int("workers", 0, "Render workers per frame (0 = auto-detect CPU count)")
	flag.Parse()

	// Create and start web server
	webServer := server.NewServer(*port)
	webServer.SetWorkers(*workers)

	slog.Info("Black Hole Ray-Marcher Web Server")
	slog.Info("Serving frame stream", "url", fmt.Sprintf("ws://localhost:%d/api/stream", *port))

	if err := webServer.Start(); err != nil {
		slog.Error("Error starting server", "err", err)
		os.Exit(1)
	}
}
