package netio

import (
	"context"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/agata-borkowska-clark/reactorhttp/reactor"
)

func TestHandleCloseIsIdempotent(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandle(fds[0])
	if !h.Valid() {
		t.Fatal("freshly constructed handle should be valid")
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if h.Valid() {
		t.Error("handle should be invalid after Close")
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	_ = unix.Close(fds[1])
}

func TestHandleTakeLeavesSentinel(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandle(fds[0])
	moved := h.Take()
	if h.Valid() {
		t.Error("source handle should be the closed sentinel after Take")
	}
	if !moved.Valid() {
		t.Error("moved-to handle should still own the descriptor")
	}
	_ = moved.Close()
	_ = unix.Close(fds[1])
}

func TestBindAcceptConnectRoundTrip(t *testing.T) {
	addr, err := ResolveTCP("127.0.0.1", 0)
	if err != nil {
		t.Fatal(err)
	}

	loop := reactor.NewEventLoop()
	err = loop.Run(context.Background(), func(ctx context.Context) error {
		acceptor, err := Bind(loop, addr)
		if err != nil {
			return err
		}
		defer acceptor.Close()

		port, err := boundPort(acceptor)
		if err != nil {
			return err
		}

		client, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
		if err != nil {
			return err
		}
		defer unix.Close(client)
		if err := unix.SetNonblock(client, true); err != nil {
			return err
		}
		connErr := unix.Connect(client, &unix.SockaddrInet4{Port: port, Addr: [4]byte{127, 0, 0, 1}})
		if connErr != nil && connErr != unix.EINPROGRESS && connErr != unix.EAGAIN {
			return connErr
		}

		server, err := acceptor.Accept(ctx)
		if err != nil {
			return err
		}
		defer server.Close()

		payload := []byte("ping")
		if _, err := unix.Write(client, payload); err != nil {
			return err
		}

		got, st, err := server.ReadExact(ctx, len(payload))
		if err != nil {
			return err
		}
		if st.Failure() {
			t.Errorf("ReadExact status = %v, want ok", st)
		}
		if string(got) != "ping" {
			t.Errorf("got %q, want %q", got, payload)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
}

func boundPort(a *Acceptor) (int, error) {
	sa, err := unix.Getsockname(a.socket.Fd())
	if err != nil {
		return 0, err
	}
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return sa.Port, nil
	default:
		return 0, unix.EAFNOSUPPORT
	}
}
