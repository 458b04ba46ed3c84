package places

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Status is the value of the top-level "status" field of a Place Details response.
type Status string

const (
	StatusOK             Status = "OK"
	StatusZeroResults    Status = "ZERO_RESULTS"
	StatusInvalidRequest Status = "INVALID_REQUEST"
	StatusOverQueryLimit Status = "OVER_QUERY_LIMIT"
	StatusRequestDenied  Status = "REQUEST_DENIED"
	StatusUnknownError   Status = "UNKNOWN_ERROR"
)

var (
	// ErrDecode wraps every failure to read a response body as a Place Details envelope.
	ErrDecode = errors.New("failed to decode response")
	// ErrMissingResult is returned, wrapped in ErrDecode, when an OK response carries no result object.
	ErrMissingResult = errors.New("response with status OK has no result")
)

// Response is the outcome reported by the API. Exactly one of OK, ZeroResults,
// InvalidRequest, OverQueryLimit, RequestDenied or UnknownError is returned;
// callers branch on it with a type switch.
type Response interface {
	Status() Status
	isResponse()
}

// OK carries the place found by the API.
type OK struct {
	Result PlaceResult
}

// ZeroResults means the place id was valid but referred to no known place.
type ZeroResults struct{}

// InvalidRequest means the request was malformed, usually a bad place id.
type InvalidRequest struct{}

// OverQueryLimit means the key has exhausted its quota.
type OverQueryLimit struct{}

// RequestDenied means the key was rejected. ErrorMessage is the API's explanation.
type RequestDenied struct {
	ErrorMessage string
}

// UnknownError covers UNKNOWN_ERROR and any status this package does not know.
// RawStatus keeps what the API sent, empty when the field was missing.
type UnknownError struct {
	RawStatus string
}

func (OK) Status() Status             { return StatusOK }
func (ZeroResults) Status() Status    { return StatusZeroResults }
func (InvalidRequest) Status() Status { return StatusInvalidRequest }
func (OverQueryLimit) Status() Status { return StatusOverQueryLimit }
func (RequestDenied) Status() Status  { return StatusRequestDenied }
func (UnknownError) Status() Status   { return StatusUnknownError }

func (OK) isResponse()             {}
func (ZeroResults) isResponse()    {}
func (InvalidRequest) isResponse() {}
func (OverQueryLimit) isResponse() {}
func (RequestDenied) isResponse()  {}
func (UnknownError) isResponse()   {}

// rawResponse mirrors the wire format. Result stays raw so that it is only
// decoded when the status says it is meaningful.
type rawResponse struct {
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	ErrorMessage string          `json:"error_message"`
}

// ParseResponse decodes a Place Details body into a Response.
// Every status value maps to a variant; only invalid JSON, an empty body or an OK
// response with an unusable result is an error, and those always wrap ErrDecode.
func ParseResponse(r io.Reader) (Response, error) {
	var raw rawResponse
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return raw.toResponse()
}

// DecodeResponse is ParseResponse over an in-memory body.
func DecodeResponse(data []byte) (Response, error) {
	return ParseResponse(bytes.NewReader(data))
}

func (raw rawResponse) toResponse() (Response, error) {
	if Status(raw.Status) != StatusOK {
		return responseFromStatus(raw.Status, raw.ErrorMessage), nil
	}

	if len(raw.Result) == 0 || bytes.Equal(raw.Result, []byte("null")) {
		return nil, fmt.Errorf("%w: %w", ErrDecode, ErrMissingResult)
	}

	var result PlaceResult
	if err := json.Unmarshal(raw.Result, &result); err != nil {
		return nil, fmt.Errorf("%w: result: %w", ErrDecode, err)
	}

	return OK{Result: result}, nil
}

// responseFromStatus maps every non-OK status to its variant.
func responseFromStatus(status, errorMessage string) Response {
	switch Status(status) {
	case StatusZeroResults:
		return ZeroResults{}
	case StatusInvalidRequest:
		return InvalidRequest{}
	case StatusOverQueryLimit:
		return OverQueryLimit{}
	case StatusRequestDenied:
		return RequestDenied{ErrorMessage: errorMessage}
	default:
		return UnknownError{RawStatus: status}
	}
}
