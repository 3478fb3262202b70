package auth

import "net/url"

// ResponseType represents the OAuth 2.0 response type.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow, the only flow
	// this server supports.
	CodeResponseType ResponseType = "code"
)

// Parameters holds the authorization request parameters. They arrive as
// query parameters at the authorize endpoint and are carried through the
// login round trip unmodified, as query/form values rather than a stored
// draft object.
type Parameters struct {
	// ClientID identifies the application requesting authorization.
	ClientID string

	// ResponseType must be "code" when present.
	ResponseType ResponseType

	// RedirectURI is where the authorization response (or error status) is
	// sent.
	RedirectURI string

	// Scope is the requested permission set, space separated.
	Scope string

	// State is an opaque client value echoed back unmodified in the
	// redirect.
	State string
}

// Validate checks the request parameters that must be present before the
// flow can start.
func (p *Parameters) Validate() error {
	if p.ClientID == "" {
		return ErrMissingClientID
	}
	if p.RedirectURI == "" {
		return ErrMissingRedirectURI
	}
	if p.ResponseType != "" && p.ResponseType != CodeResponseType {
		return ErrUnsupportedResponseType
	}
	return nil
}

// Values encodes the parameters for propagation through the login step.
func (p *Parameters) Values() url.Values {
	v := url.Values{}
	v.Set("client_id", p.ClientID)
	v.Set("scope", p.Scope)
	v.Set("response_type", string(p.ResponseType))
	v.Set("redirect_uri", p.RedirectURI)
	v.Set("state", p.State)
	return v
}

// ParametersFromValues is the inverse of Values.
func ParametersFromValues(v url.Values) *Parameters {
	return &Parameters{
		ClientID:     v.Get("client_id"),
		ResponseType: ResponseType(v.Get("response_type")),
		RedirectURI:  v.Get("redirect_uri"),
		Scope:        v.Get("scope"),
		State:        v.Get("state"),
	}
}
