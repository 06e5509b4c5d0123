package domain

import "time"

// Visit is an append-only audit record of one identity viewing another's
// map. Once recorded it is never mutated or deleted by this layer.
type Visit struct {
	ID              string    `json:"id"`
	Visited         string    `json:"visited"`
	Visitor         string    `json:"visitor"`
	CredentialToken string    `json:"-"`
	Timestamp       time.Time `json:"timestamp"`
}

// VisitDraft is the input for recording a visit. The ledger assigns
// ID and Timestamp. CredentialToken is stored verbatim for audit and
// never validated or served back out.
type VisitDraft struct {
	Visited         string `json:"visited"`
	Visitor         string `json:"visitor"`
	CredentialToken string `json:"credential_token,omitempty"`
}

// Validate checks the fields the ledger requires.
func (d VisitDraft) Validate() error {
	if d.Visited == "" {
		return &ValidationError{Field: "visited", Reason: "must not be empty"}
	}
	if d.Visitor == "" {
		return &ValidationError{Field: "visitor", Reason: "must not be empty"}
	}
	return nil
}

// Identity is what the external identity provider exposes: an email-like
// identifier and an opaque credential token. This layer trusts both and
// validates neither.
type Identity struct {
	Email string `json:"email"`
	Token string `json:"-"`
}
