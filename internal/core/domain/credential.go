package domain

import "strings"

// Credential is the durable authentication artifact: an opaque bearer token
// together with the profile it was minted for. Token and user are set and
// cleared together; one present without the other signals corruption.
type Credential struct {
	Token string
	User  User
}

// WellFormed reports whether both halves of the pair are present and the
// profile passes structural validation.
func (c Credential) WellFormed() bool {
	if strings.TrimSpace(c.Token) == "" {
		return false
	}
	return c.User.Validate() == nil
}
