package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the version of the response envelope format.
const EnvelopeVersion = 1

// Envelope wraps every JSON response:
//
//	{"v":1,"success":true,"data":{...}}
//	{"v":1,"success":false,"error":"movie not found","code":"NOT_FOUND","message":"movie not found"}
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma.Transformer that wraps response bodies in an Envelope.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return Envelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	return Envelope{
		Version: EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
