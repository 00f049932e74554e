// Package status implements a domain-tagged status/error taxonomy: every
// status carries a payload interpreted by an interned domain descriptor,
// and every domain maps its codes onto one of six canonical categories.
package status

import "fmt"

// Category is one of the coarse buckets every domain-specific code maps to.
type Category int

const (
	OK Category = iota
	ClientError
	TransientError
	PermanentError
	NotAvailable
	UnknownError
	// Exhausted is not one of the six canonical categories other domains
	// canonicalize to; it is an extra canonical-domain code used by stream
	// convenience methods when a peer closes mid-read/write.
	Exhausted
)

func (c Category) String() string {
	switch c {
	case OK:
		return "ok"
	case ClientError:
		return "client_error"
	case TransientError:
		return "transient_error"
	case PermanentError:
		return "permanent_error"
	case NotAvailable:
		return "not_available"
	case UnknownError:
		return "unknown_error"
	case Exhausted:
		return "exhausted"
	default:
		return "<invalid>"
	}
}

// Payload is the data a Status carries, interpreted by its Domain. Either
// Code is meaningful on its own (inline-code variant), or Pointer is a
// domain-owned side structure (pointer-payload variant), mirroring the two
// status_managers template instantiations in the original implementation.
type Payload struct {
	Code    int
	Pointer any
}

// Domain is an interned descriptor giving meaning to a status payload. Every
// concrete domain is a singleton value satisfying this interface.
type Domain interface {
	// DomainID is a stable identifier for this domain, used so that two
	// statuses from the same domain can be compared exactly.
	DomainID() uint64
	// DomainName names the domain for printing, e.g. "posix" or "http_status".
	DomainName() string
	// Name returns the human-readable name of a payload's code.
	Name(p Payload) string
	// Failure reports whether a payload represents a failure.
	Failure(p Payload) bool
	// Canonical maps a payload onto one of the six canonical categories.
	Canonical(p Payload) Category
	// Code returns the raw numeric code carried by a payload.
	Code(p Payload) int
	// Output appends any additional context understood only by this domain.
	Output(p Payload) string
}

// Status is a (domain, payload) pair. Build one with Ok, Make, or one of the
// domain constructors; the zero Status behaves as Ok (success, code OK).
type Status struct {
	domain  Domain
	payload Payload
}

// Ok returns a Status in the canonical domain with category OK.
func Ok() Status {
	return canonicalDomain.make(OK)
}

// Make builds a Status from the canonical domain and category.
func Make(c Category) Status {
	return canonicalDomain.make(c)
}

// Makef builds a Status from the canonical domain, category, and an attached
// message.
func Makef(c Category, format string, args ...any) Status {
	return canonicalDomain.makeMessage(c, fmt.Sprintf(format, args...))
}

// FromDomain constructs a Status from an arbitrary domain and payload.
func FromDomain(d Domain, p Payload) Status {
	return Status{domain: d, payload: p}
}

// Success reports whether s represents success.
func (s Status) Success() bool {
	if s.domain == nil {
		return true
	}
	return !s.domain.Failure(s.payload)
}

// Failure reports whether s represents failure.
func (s Status) Failure() bool {
	return !s.Success()
}

// Domain returns the domain that interprets this status's payload.
func (s Status) Domain() Domain {
	if s.domain == nil {
		return canonicalDomain
	}
	return s.domain
}

// Code returns the raw domain-specific code carried by this status.
func (s Status) Code() int {
	if s.domain == nil {
		return int(OK)
	}
	return s.domain.Code(s.payload)
}

// Canonical translates this status into a Status in the canonical domain.
func (s Status) Canonical() Status {
	if s.domain == nil {
		return Ok()
	}
	return canonicalDomain.make(s.domain.Canonical(s.payload))
}

// CanonicalCategory is a convenience accessor equivalent to
// s.Canonical().Code() interpreted as a Category.
func (s Status) CanonicalCategory() Category {
	if s.domain == nil {
		return OK
	}
	return s.domain.Canonical(s.payload)
}

func (s Status) String() string {
	d := s.Domain()
	str := d.DomainName() + "::" + d.Name(s.payload)
	if extra := d.Output(s.payload); extra != "" {
		str += ": " + extra
	}
	return str
}

// Equal compares two statuses: exactly within the same domain, or by
// canonical category otherwise.
func Equal(l, r Status) bool {
	if l.Domain().DomainID() == r.Domain().DomainID() {
		return l.Code() == r.Code()
	}
	return l.CanonicalCategory() == r.CanonicalCategory()
}

// ExhaustedStatus is a sentinel canonical-domain status used by stream
// convenience methods when a peer closes mid-read/write.
var ExhaustedStatus = canonicalDomain.make(Exhausted)
