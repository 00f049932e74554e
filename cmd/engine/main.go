// Command engine is the reactor-based HTTP/WebSocket server of spec §6.
// Grounded on anasdox-workline's cobra root-command + RunE pattern: no
// subcommands or flags beyond the two positional arguments the spec names.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agata-borkowska-clark/reactorhttp/httpcore"
	"github.com/agata-borkowska-clark/reactorhttp/netio"
	"github.com/agata-borkowska-clark/reactorhttp/obs"
	"github.com/agata-borkowska-clark/reactorhttp/reactor"
	"github.com/agata-borkowska-clark/reactorhttp/ws"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = 8000
)

func main() {
	cmd := &cobra.Command{
		Use:   "engine [port | host port]",
		Short: "Single-threaded reactor HTTP/WebSocket server",
		Args:  cobra.MaximumNArgs(2),
		RunE:  run,
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "engine:", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (host string, port int, err error) {
	host, port = defaultHost, defaultPort
	switch len(args) {
	case 0:
	case 1:
		port, err = strconv.Atoi(args[0])
	case 2:
		host = args[0]
		port, err = strconv.Atoi(args[1])
	}
	if err != nil {
		return "", 0, fmt.Errorf("invalid port: %w", err)
	}
	return host, port, nil
}

func run(cmd *cobra.Command, args []string) error {
	host, port, err := parseArgs(args)
	if err != nil {
		return err
	}

	observability, err := obs.New()
	if err != nil {
		return fmt.Errorf("observability init: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	loop := reactor.NewEventLoop()
	return loop.Run(ctx, func(ctx context.Context) error {
		addr, err := netio.ResolveTCP(host, port)
		if err != nil {
			return fmt.Errorf("resolve %s:%d: %w", host, port, err)
		}
		acceptor, err := netio.Bind(loop, addr)
		if err != nil {
			return fmt.Errorf("bind %s:%d: %w", host, port, err)
		}
		defer acceptor.Close()

		server := httpcore.NewServer(loop, observability)
		registerRoutes(loop, server)

		observability.Logger.InfoContext(ctx, "listening", "host", host, "port", port)
		return server.Serve(ctx, acceptor)
	})
}

// registerRoutes wires the demo routes an operator would configure: a
// plain-text handler plus the websocket echo endpoint spec §8 scenario 6
// exercises.
func registerRoutes(loop *reactor.EventLoop, server *httpcore.Server) {
	server.Handle("/hello", func(ctx context.Context, req httpcore.Request, respond *httpcore.Responder) error {
		return respond.Respond(httpcore.Response{
			Payload:     []byte("hi"),
			ContentType: "text/plain",
		})
	})

	server.Handle("/echo", echoHandler(loop))
}

func echoHandler(loop *reactor.EventLoop) httpcore.Handler {
	return func(ctx context.Context, req httpcore.Request, respond *httpcore.Responder) error {
		stream := respond.Stream()
		if err := ws.Upgrade(ctx, stream, req.Method, req.Headers); err != nil {
			respond.MarkResponded(400)
			return nil
		}
		respond.MarkResponded(101)

		conn := ws.NewConn(loop, stream)
		defer conn.Close()
		buf := make([]byte, 65536)
		for {
			msg, err := conn.Receive(ctx, buf)
			if err != nil {
				return nil
			}
			conn.Send(ctx, msg)
		}
	}
}
