package httpcore

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/agata-borkowska-clark/reactorhttp/netio"
	"github.com/agata-borkowska-clark/reactorhttp/reactor"
)

// dialAndExchange connects a raw non-blocking client socket to port, writes
// request, and reads until the peer closes or deadline elapses. It runs
// outside the reactor (on an OS thread) so the test can drive a real TCP
// round trip against the server running inside the loop.
func dialAndExchange(t *testing.T, port int, request string) string {
	t.Helper()
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer unix.Close(fd)

	deadline := time.Now().Add(2 * time.Second)
	for {
		err := unix.Connect(fd, &unix.SockaddrInet4{Port: port, Addr: [4]byte{127, 0, 0, 1}})
		if err == nil || err == unix.EISCONN {
			break
		}
		if err == unix.EINPROGRESS || err == unix.EALREADY || err == unix.ECONNREFUSED {
			if time.Now().After(deadline) {
				t.Fatalf("connect timed out: %v", err)
			}
			time.Sleep(5 * time.Millisecond)
			continue
		}
		t.Fatalf("connect: %v", err)
	}

	if _, err := unix.Write(fd, []byte(request)); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	buf := make([]byte, 4096)
	for {
		n, err := unix.Read(fd, buf)
		if n > 0 {
			out.Write(buf[:n])
		}
		if err != nil || n == 0 {
			break
		}
	}
	return out.String()
}

func newTestServer(t *testing.T) (*reactor.EventLoop, *Server, int) {
	t.Helper()
	loop := reactor.NewEventLoop()
	server := NewServer(loop, nil)
	server.Handle("/hello", func(ctx context.Context, req Request, respond *Responder) error {
		return respond.Respond(Response{Payload: []byte("hi"), ContentType: "text/plain"})
	})

	portCh := make(chan int, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- loop.Run(context.Background(), func(ctx context.Context) error {
			addr, err := netio.ResolveTCP("127.0.0.1", 0)
			if err != nil {
				portCh <- 0
				return err
			}
			acceptor, err := netio.Bind(loop, addr)
			if err != nil {
				portCh <- 0
				return err
			}
			portCh <- boundPort(t, acceptor)
			return server.Serve(ctx, acceptor)
		})
	}()
	port := <-portCh
	if port == 0 {
		t.Fatalf("server failed to bind: %v", <-errCh)
	}
	return loop, server, port
}

func boundPort(t *testing.T, a *netio.Acceptor) int {
	t.Helper()
	sa, err := unix.Getsockname(a.Fd())
	if err != nil {
		t.Fatal(err)
	}
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return sa.Port
	default:
		t.Fatalf("unexpected sockaddr type %T", sa)
		return 0
	}
}

func TestHTTPHappyPath(t *testing.T) {
	// spec §8 scenario 3.
	_, _, port := newTestServer(t)
	resp := dialAndExchange(t, port,
		"GET /hello HTTP/1.1\r\nHost: x\r\nContent-Length: 0\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 200 ok\r\n") {
		t.Errorf("response does not start with 200 ok status line: %q", resp)
	}
	if !strings.Contains(resp, "Content-Type: text/plain") {
		t.Errorf("missing Content-Type header: %q", resp)
	}
	if !strings.Contains(resp, "Content-Length: 2") {
		t.Errorf("missing Content-Length: 2 header: %q", resp)
	}
	if !strings.HasSuffix(resp, "hi") {
		t.Errorf("body not \"hi\": %q", resp)
	}
}

func TestHTTPNotFound(t *testing.T) {
	// spec §8 scenario 4.
	_, _, port := newTestServer(t)
	resp := dialAndExchange(t, port, "GET /missing HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(resp, "HTTP/1.1 404 not_found") {
		t.Errorf("response does not start with 404 not_found: %q", resp)
	}
}

func TestHTTPOversizeHeader(t *testing.T) {
	// spec §8 scenario 5.
	_, _, port := newTestServer(t)
	oversize := "GET /hello HTTP/1.1\r\nX-Big: " + strings.Repeat("a", 2048)
	resp := dialAndExchange(t, port, oversize)
	if !strings.HasPrefix(resp, "HTTP/1.1 431 request_header_fields_too_large") {
		t.Errorf("response does not start with 431: %q", resp)
	}
}
