package models

import (
	"context"

	"github.com/golang-jwt/jwt"
)

// Claims carried by dashboard access tokens. The core treats UserID and
// OrganizationID as opaque identifiers.
type Claims struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Role           string `json:"role"`
	jwt.StandardClaims
}

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type contextKey string

// ClaimsContextKey is where authentication middleware stores the verified
// claims for downstream handlers.
const ClaimsContextKey contextKey = "claims"

// ClaimsFromContext returns the verified claims, nil on unauthenticated
// requests.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}
