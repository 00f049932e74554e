package httpcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/agata-borkowska-clark/reactorhttp/netio"
	"github.com/agata-borkowska-clark/reactorhttp/status"
)

// Response is what a handler hands to Responder.Respond on success.
type Response struct {
	Payload     []byte
	ContentType string
}

// Responder is the single-use `respond` closure of spec §4.6: "the handler
// must invoke respond exactly once before its coroutine terminates". ctx is
// the same reactor-bound context the handler itself was called with, so
// that a write large enough to block on a full send buffer still awaits
// through the running [*reactor.EventLoop] rather than a bare
// context.Background() (which panics the moment AwaitWritable needs to
// find the loop in it).
type Responder struct {
	stream     *netio.Stream
	ctx        context.Context
	conn       uuid.UUID
	method     Method
	target     string
	responded  bool
	statusCode int
}

// ErrAlreadyResponded is the programmer-bug case of spec §7 ("double-respond
// a request"): assertions in debug, tolerated in release. This module
// reports it as an ordinary Go error rather than panicking, since the
// connection driver maps it straight to the spec's "implementation error"
// disposition regardless.
var ErrAlreadyResponded = errors.New("httpcore: respond called more than once")

// Respond sends a 200 response with the given payload and content type,
// honoring the handler's own context (see the [Responder] doc comment).
func (r *Responder) Respond(resp Response) error {
	if r.responded {
		return ErrAlreadyResponded
	}
	r.responded = true
	r.statusCode = 200
	return writeResponse(r.ctx, r.stream, status.HTTPStatus(200), resp)
}

// RespondCtx is Respond with an explicit context (used when a handler
// needs to honor cancellation while writing a large payload).
func (r *Responder) RespondCtx(ctx context.Context, resp Response) error {
	if r.responded {
		return ErrAlreadyResponded
	}
	r.responded = true
	r.statusCode = 200
	return writeResponse(ctx, r.stream, status.HTTPStatus(200), resp)
}

// RespondError sends an error response whose code is derived from err, per
// spec §4.6's error-code mapping (http_status passes through; other
// canonical categories map per spec §4.6/§7).
func (r *Responder) RespondError(ctx context.Context, err error) error {
	if r.responded {
		return ErrAlreadyResponded
	}
	r.responded = true
	r.statusCode = codeForError(err)
	return writeErrorResponse(ctx, r.stream, err)
}

// Responded reports whether Respond/RespondError has been called.
func (r *Responder) Responded() bool {
	return r.responded
}

// StatusCode returns the status code of the response actually written to
// the wire (via Respond/RespondError/MarkResponded), or 0 if none has been
// written yet.
func (r *Responder) StatusCode() int {
	return r.statusCode
}

// Stream exposes the underlying connection for handlers that take over the
// wire themselves after the HTTP exchange, such as a websocket upgrade
// (spec §4.7: "on success the HTTP layer hands the connection off").
func (r *Responder) Stream() *netio.Stream {
	return r.stream
}

// MarkResponded records that the handler has written its own response
// directly to the stream (bypassing Respond/RespondError) with the given
// status code, so the connection driver does not also synthesize one and
// records the code that was actually written.
func (r *Responder) MarkResponded(code int) {
	r.responded = true
	r.statusCode = code
}

// asStatus unwraps err into the [status.Status] it carries, whether err is
// a bare Status (e.g. status.HTTPStatus) or a status.Error (an embedded
// Status with a never-OK canonical category, e.g. from status.ClientErrorf).
func asStatus(err error) (status.Status, bool) {
	switch e := err.(type) {
	case status.Status:
		return e, true
	case status.Error:
		return e.Status, true
	default:
		return status.Status{}, false
	}
}

func codeForError(err error) int {
	st, ok := asStatus(err)
	if !ok {
		return 500
	}
	if st.Domain().DomainName() == "http_status" {
		return st.Code()
	}
	switch st.CanonicalCategory() {
	case status.ClientError, status.NotAvailable:
		return 400
	default:
		return 500
	}
}

func writeResponse(ctx context.Context, stream *netio.Stream, s status.Status, resp Response) error {
	header := fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Type: %s\r\nContent-Length: %d\r\n\r\n",
		s.Code(), s.Domain().Name(statusPayloadOf(s)), resp.ContentType, len(resp.Payload))
	if err := stream.Write(ctx, []byte(header)); err != nil {
		return err
	}
	if len(resp.Payload) == 0 {
		return nil
	}
	return stream.Write(ctx, resp.Payload)
}

// statusPayloadOf re-derives the payload a Status wraps, since Domain.Name
// needs the (unexported) payload the Status carries. Status.String already
// does this internally; this mirrors it for the header line's reason
// phrase specifically.
func statusPayloadOf(s status.Status) status.Payload {
	return status.Payload{Code: s.Code()}
}

func writeErrorResponse(ctx context.Context, stream *netio.Stream, err error) error {
	code := codeForError(err)
	body := err.Error()
	return writeResponse(ctx, stream, status.HTTPStatus(code), Response{
		Payload:     []byte(body),
		ContentType: "text/plain",
	})
}
