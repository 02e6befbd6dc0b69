package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devserve/devserve"
)

var (
	flPort   = flag.Int("port", 8000, "preferred port to listen on")
	flDir    = flag.String("dir", ".", "directory to serve")
	flBind   = flag.String("b", "127.0.0.1", "addr to bind to")
	flConfig = flag.String("c", "", "optional TOML config file")
	flWatch  = flag.Bool("w", false, "log file changes under the served directory")
	flQuiet  = flag.Bool("q", false, "no per-request access log")

	shutdownGrace = 5 * time.Second
)

func main() {
	flag.Parse()

	config := devserve.DefaultConfig()
	if *flConfig != "" {
		var err error
		config, err = devserve.LoadConfig(*flConfig, config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	// explicit flags win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			config.Port = *flPort
		case "dir":
			config.Root = *flDir
		case "b":
			config.Host = *flBind
		case "w":
			config.Watch = *flWatch
		case "q":
			config.Quiet = *flQuiet
		}
	})

	dir, err := devserve.ResolveServeDir(config.Root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	config.Root = dir

	srv := devserve.NewServer(config)
	if err := srv.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	done := make(chan struct{})
	if config.Watch {
		if err := devserve.WatchDir(config.Root, done); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Serving %q at %s\n", config.Root, srv.URL())
	fmt.Println("Press Ctrl+C to stop.")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		fmt.Println("\nShutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	err = srv.Serve()
	close(done)
	if err != nil && err != http.ErrServerClosed {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
