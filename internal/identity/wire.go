package identity

import "github.com/arklim/dispatch-console-auth/internal/core/domain"

// Wire shapes shared by the backend handlers and the HTTP client.

type userPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

type credentialPayload struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type impersonateRequest struct {
	TargetUserID string `json:"target_user_id"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func toUserPayload(user domain.User) userPayload {
	return userPayload{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		Department: user.Department,
	}
}

func (p userPayload) toDomain() domain.User {
	return domain.User{
		ID:         p.ID,
		Name:       p.Name,
		Email:      p.Email,
		Role:       domain.Role(p.Role),
		Department: p.Department,
	}
}

func toCredentialPayload(cred domain.Credential) credentialPayload {
	return credentialPayload{Token: cred.Token, User: toUserPayload(cred.User)}
}

func (p credentialPayload) toDomain() domain.Credential {
	return domain.Credential{Token: p.Token, User: p.User.toDomain()}
}
