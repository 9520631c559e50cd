package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
)

const maxBodyBytes = 1 << 20

// Request is the inbound request seen by a Handler.
type Request struct {
	*http.Request
}

// ClientIP is the caller address resolved by the IP middleware.
func (r *Request) ClientIP() string { return ClientIP(r.Request) }

// DecodeBody strictly decodes exactly one JSON object into dst. Unknown
// fields, trailing data and bodies over 1 MiB are rejected with
// goerror.NewInvalidFormat.
func (r *Request) DecodeBody(dst any) error {
	if r == nil || r.Request == nil || r.Body == nil {
		return goerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return goerror.NewInvalidFormat()
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return goerror.NewInvalidFormat()
	}
	return nil
}
