package models

import "time"

// Token is an opaque 32-hex-character bearer credential (spec.md §3). A
// nil Pipeline means the token is a power-user/administrator credential;
// a non-nil Pipeline scopes it to exactly that pipeline.
type Token struct {
	ID          int64      `json:"-"`
	Value       string     `json:"-" doc:"32-character hex credential. Never logged, never re-readable after mint."`
	Pipeline    *Pipeline  `json:"-"`
	Description string     `json:"description" example:"CI runner for cram_to_bam" doc:"Free-text description of this token's purpose."`
	DateIssued  time.Time  `json:"-"`
	DateRevoked *time.Time `json:"-"`
}

// Revoked reports whether the token has been revoked, i.e. date_revoked is
// set (spec.md §3 invariant: usable iff it exists and date_revoked is NULL).
func (t Token) Revoked() bool {
	return t.DateRevoked != nil
}

// MintedToken is the one-shot response to PipelineService.MintToken. The
// plaintext Token value is returned to the API caller here and here only; no
// endpoint returns it again. Storage keeps the token string itself in the
// clear (unique, never hashed in this core, since unlike the teacher's
// management tokens, npg_porch tokens carry no expiry/disable metadata
// beyond date_revoked).
type MintedToken struct {
	Name        string `json:"name" example:"cram_to_bam" doc:"Name of the pipeline this token is scoped to."`
	Token       string `json:"token" example:"7dc1457531e34959bd5bcda579c1c6a1" doc:"32-character hex bearer credential. Shown once."`
	Description string `json:"description"`
}
