package status

// addressInfoDomainType interprets payload codes as name-resolution
// failures (spec §4.1's address_info domain), used by netio.ResolveTCP.
type addressInfoDomainType struct{}

const addressInfoDomainID uint64 = 0x6d6f7b1c9a2e4f88

// AddressInfoCode enumerates the resolution outcomes this module
// distinguishes; there is no standardized errno-like code space for getaddrinfo
// failures portable across platforms, so this is a small closed set specific
// to what Resolve can report.
type AddressInfoCode int

const (
	AddressInfoOK AddressInfoCode = iota
	AddressInfoNoSuchHost
	AddressInfoNoSuchService
	AddressInfoTemporaryFailure
	AddressInfoFamilyMismatch
	AddressInfoOther
)

func (addressInfoDomainType) DomainID() uint64   { return addressInfoDomainID }
func (addressInfoDomainType) DomainName() string { return "address_info" }

func (addressInfoDomainType) Name(p Payload) string {
	switch AddressInfoCode(p.Code) {
	case AddressInfoOK:
		return "ok"
	case AddressInfoNoSuchHost:
		return "no_such_host"
	case AddressInfoNoSuchService:
		return "no_such_service"
	case AddressInfoTemporaryFailure:
		return "temporary_failure"
	case AddressInfoFamilyMismatch:
		return "family_mismatch"
	default:
		return "other"
	}
}

func (addressInfoDomainType) Failure(p Payload) bool {
	return AddressInfoCode(p.Code) != AddressInfoOK
}

func (addressInfoDomainType) Canonical(p Payload) Category {
	switch AddressInfoCode(p.Code) {
	case AddressInfoOK:
		return OK
	case AddressInfoNoSuchHost, AddressInfoNoSuchService, AddressInfoFamilyMismatch:
		return ClientError
	case AddressInfoTemporaryFailure:
		return TransientError
	default:
		return UnknownError
	}
}

func (addressInfoDomainType) Code(p Payload) int {
	return p.Code
}

func (addressInfoDomainType) Output(p Payload) string {
	if msg, ok := p.Pointer.(string); ok {
		return msg
	}
	return ""
}

var addressInfoDomain addressInfoDomainType

// AddressInfoError builds an Error for a name-resolution failure.
func AddressInfoError(code AddressInfoCode, message string) Error {
	return NewError(Status{domain: addressInfoDomain, payload: Payload{Code: int(code), Pointer: message}})
}
