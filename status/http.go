package status

import (
	"fmt"
	"strconv"
)

// httpDomainType interprets payload codes as HTTP status codes grouped by
// hundreds, as described in spec §4.1: 1xx/2xx/3xx are non-failure, 4xx/5xx
// are failure; canonicalization maps 4xx -> ClientError, 5xx -> UnknownError,
// 2xx -> OK.
type httpDomainType struct{}

const httpDomainID uint64 = 0xa411b4d9f5c7e201

func (httpDomainType) DomainID() uint64   { return httpDomainID }
func (httpDomainType) DomainName() string { return "http_status" }

func (httpDomainType) Name(p Payload) string {
	if name, ok := httpReasons[p.Code]; ok {
		return name
	}
	return strconv.Itoa(p.Code)
}

func (httpDomainType) Failure(p Payload) bool {
	return p.Code >= 400
}

func (httpDomainType) Canonical(p Payload) Category {
	switch {
	case p.Code >= 200 && p.Code < 300:
		return OK
	case p.Code >= 400 && p.Code < 500:
		return ClientError
	case p.Code >= 500:
		return UnknownError
	default:
		return OK
	}
}

func (httpDomainType) Code(p Payload) int {
	return p.Code
}

func (httpDomainType) Output(p Payload) string {
	if msg, ok := p.Pointer.(string); ok {
		return msg
	}
	return ""
}

var httpDomain httpDomainType

// HTTPStatus builds a Status from a numeric HTTP status code.
func HTTPStatus(code int) Status {
	return Status{domain: httpDomain, payload: Payload{Code: code}}
}

// HTTPStatusf builds a Status from a numeric HTTP status code with an
// attached message, used for the response body text spec §4.6's error
// responses print ("the body is the printed error").
func HTTPStatusf(code int, format string, args ...any) Status {
	return Status{domain: httpDomain, payload: Payload{Code: code, Pointer: fmt.Sprintf(format, args...)}}
}

// httpReasons names every HTTP status code this module's server ever emits
// (spec §4.6/§4.7/§7). Codes outside this table still work (Name falls back
// to the numeric string) but every response this module sends uses one of
// these.
var httpReasons = map[int]string{
	200: "ok",
	101: "switching_protocols",
	400: "bad_request",
	404: "not_found",
	413: "payload_too_large",
	431: "request_header_fields_too_large",
	500: "internal_server_error",
	501: "not_implemented",
}
