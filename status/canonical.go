package status

// canonicalDomainType is the domain for the six canonical categories plus
// Exhausted. It has two payload shapes: a bare code, and a code with an
// attached message, mirroring code_manager/code_with_message_manager in
// the original implementation.
type canonicalDomainType struct{}

const canonicalDomainID uint64 = 0x3ff4c58c78c16089

func (canonicalDomainType) DomainID() uint64   { return canonicalDomainID }
func (canonicalDomainType) DomainName() string { return "status_code" }

func (canonicalDomainType) Name(p Payload) string {
	return Category(p.Code).String()
}

func (canonicalDomainType) Failure(p Payload) bool {
	return Category(p.Code) != OK
}

func (canonicalDomainType) Canonical(p Payload) Category {
	return Category(p.Code)
}

func (canonicalDomainType) Code(p Payload) int {
	return p.Code
}

func (canonicalDomainType) Output(p Payload) string {
	if msg, ok := p.Pointer.(string); ok {
		return msg
	}
	return ""
}

var canonicalDomain canonicalDomainType

func (canonicalDomainType) make(c Category) Status {
	return Status{domain: canonicalDomain, payload: Payload{Code: int(c)}}
}

func (canonicalDomainType) makeMessage(c Category, message string) Status {
	return Status{domain: canonicalDomain, payload: Payload{Code: int(c), Pointer: message}}
}

// Error is a Status whose canonical category is never OK. Constructing one
// from an OK status yields UnknownError, matching the assertion-guarded
// behavior of the original implementation's error type (debug builds would
// assert; this constructor simply corrects the mistake since Go has no
// assert statement).
type Error struct {
	Status
}

// NewError wraps s as an Error, coercing OK statuses to UnknownError.
func NewError(s Status) Error {
	if s.Success() {
		return Error{Make(UnknownError)}
	}
	return Error{s}
}

func ClientErrorf(message string) Error {
	return Error{canonicalDomain.makeMessage(ClientError, message)}
}

func TransientErrorf(message string) Error {
	return Error{canonicalDomain.makeMessage(TransientError, message)}
}

func PermanentErrorf(message string) Error {
	return Error{canonicalDomain.makeMessage(PermanentError, message)}
}

func NotAvailableError(message string) Error {
	return Error{canonicalDomain.makeMessage(NotAvailable, message)}
}

func UnknownErrorf(message string) Error {
	return Error{canonicalDomain.makeMessage(UnknownError, message)}
}

// Error implements the error interface, allowing a Status to be returned
// from ordinary Go functions that expect one.
func (s Status) Error() string {
	return s.String()
}
