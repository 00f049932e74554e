package httpcore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agata-borkowska-clark/reactorhttp/netio"
	"github.com/agata-borkowska-clark/reactorhttp/obs"
	"github.com/agata-borkowska-clark/reactorhttp/reactor"
	"github.com/agata-borkowska-clark/reactorhttp/status"
)

// requestReadTimeout bounds how long a connection may take to deliver a
// complete request line, headers, and body before the server gives up on
// it (spec §4.4/§5's timeout primitive: race the read against a timer).
const requestReadTimeout = 30 * time.Second

// Handler is a registered request handler. It receives the parsed request
// and a single-use Responder; it must call Respond or RespondError exactly
// once before returning (spec §4.6).
type Handler func(ctx context.Context, req Request, respond *Responder) error

// Server owns the exact-path-to-handler mapping and the accept loop.
// Grounded on the original's http_server (handlers_ map, accept_loop,
// handle_connection), generalized from the original's
// `std::map<std::string, handler>` into a Go map of [Handler].
type Server struct {
	loop     *reactor.EventLoop
	handlers map[string]Handler
	obs      *obs.Observability
}

// NewServer constructs a server bound to loop. obs may be nil, in which
// case requests are handled with no logging/tracing/metrics.
func NewServer(loop *reactor.EventLoop, observability *obs.Observability) *Server {
	return &Server{
		loop:     loop,
		handlers: make(map[string]Handler),
		obs:      observability,
	}
}

// Handle registers h for the exact path (spec §4.6: "the server owns a
// mapping from exact path strings to handler factories").
func (s *Server) Handle(path string, h Handler) {
	s.handlers[path] = h
}

// Serve accepts connections from acceptor until ctx is cancelled or accept
// fails fatally, spawning a connection handler task per accepted stream.
// Grounded on the original's accept_loop/spawn_connection.
func (s *Server) Serve(ctx context.Context, acceptor *netio.Acceptor) error {
	for {
		stream, err := acceptor.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		reactor.SpawnTask(ctx, func(ctx context.Context) (any, error) {
			s.handleConnection(ctx, stream)
			return nil, nil
		})
	}
}

func (s *Server) handleConnection(ctx context.Context, stream *netio.Stream) {
	defer stream.Close()

	connID := uuid.New()
	ctx = withConnectionID(ctx, connID)

	req, err := reactor.WithTimeout(ctx, requestReadTimeout, func(ctx context.Context) (Request, error) {
		return ReadRequest(ctx, stream)
	})
	if err != nil {
		s.handleReadError(ctx, stream, connID, err)
		return
	}

	handler, ok := s.handlers[req.Target.Path]
	if !ok {
		s.respondError(ctx, stream, req.Method.String(), req.Target.Path, connID, status.HTTPStatus(404))
		return
	}

	var spanEnd func()
	if s.obs != nil {
		ctx, spanEnd = s.obs.StartRequest(ctx, req.Method.String(), req.Target.Path)
		defer spanEnd()
	}

	responder := &Responder{stream: stream, ctx: ctx, conn: connID, method: req.Method, target: req.Target.Path}
	handlerErr := handler(ctx, req, responder)

	if !responder.Responded() {
		// Spec §9's Open Question resolution: a handler that returns without
		// calling respond is an implementation error, mapped to a 500 rather
		// than left half-open.
		_ = responder.RespondError(ctx, status.Makef(status.UnknownError, "handler did not call respond"))
	}
	if handlerErr != nil && s.obs != nil {
		s.obs.Logger.WarnContext(ctx, "handler returned error", "error", handlerErr)
	}
	s.record(ctx, req.Method.String(), req.Target.Path, responder.StatusCode(), len(req.Body), 0)
}

func (s *Server) respondError(ctx context.Context, stream *netio.Stream, method, target string, connID uuid.UUID, err error) {
	_ = writeErrorResponse(ctx, stream, err)
	s.record(ctx, method, target, codeForError(err), 0, 0)
}

// handleReadError decides whether a ReadRequest failure is a malformed
// request (400/413/431/501, synthesized as a response per spec §4.6) or a
// transport failure (connection reset, read timeout) for which spec §4.6
// requires no response attempt — the connection simply closes.
func (s *Server) handleReadError(ctx context.Context, stream *netio.Stream, connID uuid.UUID, err error) {
	if st, ok := asStatus(err); ok && st.Domain().DomainName() == "http_status" {
		s.respondError(ctx, stream, "", "", connID, err)
		return
	}
	if s.obs != nil {
		s.obs.Logger.WarnContext(ctx, "connection closed before a request could be read", "error", err)
	}
}

func (s *Server) record(ctx context.Context, method, target string, code, bytesIn, bytesOut int) {
	if s.obs == nil {
		return
	}
	s.obs.RecordResponse(ctx, method, target, code, bytesIn, bytesOut)
}

type connIDKey struct{}

func withConnectionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, connIDKey{}, id)
}

// ConnectionID returns the per-connection uuid stashed in ctx by
// handleConnection, or the zero UUID if none is present.
func ConnectionID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(connIDKey{}).(uuid.UUID)
	return id
}
