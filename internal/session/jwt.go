// Package session issues and validates the signed session tokens that carry
// the authenticated principal between requests.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"campus/internal/identity"
	id "campus/pkg/domain"
	dErrors "campus/pkg/domain-errors"
)

// Claims are the token claims for session access tokens.
//
// SchoolID is absent for accounts issued before tenant claims existed; the
// resolver then falls back to relation lookups. Features is a pointer so an
// absent claim (legacy account, allow-all) stays distinguishable from an
// explicit empty list (allow-none) across a marshal round trip.
type Claims struct {
	Role      string    `json:"role"`
	SchoolID  string    `json:"school_id,omitempty"`
	StudentID string    `json:"student_id,omitempty"`
	Features  *[]string `json:"features,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and validates session tokens.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

// NewService constructs a session token service.
func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Issue signs a token carrying the principal's identity and grants.
func (s *Service) Issue(principal *identity.Principal, expiresIn time.Duration) (string, error) {
	claims := Claims{
		Role: string(principal.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	}
	if !principal.SchoolID.IsNil() {
		claims.SchoolID = principal.SchoolID.String()
	}
	if !principal.StudentID.IsNil() {
		claims.StudentID = principal.StudentID.String()
	}
	if principal.Features != nil {
		features := make([]string, 0, len(principal.Features))
		for _, f := range principal.Features {
			features = append(features, string(f))
		}
		claims.Features = &features
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.signingKey)
}

// Validate parses and verifies a token and rebuilds the principal.
func (s *Service) Validate(tokenString string) (*identity.Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token")
	}
	return claims.Principal()
}

// Principal rebuilds the authenticated principal from validated claims.
func (c *Claims) Principal() (*identity.Principal, error) {
	userID, err := id.ParseUserID(c.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token subject")
	}
	role, err := identity.ParseRole(c.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token role")
	}

	principal := &identity.Principal{UserID: userID, Role: role}
	if c.SchoolID != "" {
		schoolID, err := id.ParseSchoolID(c.SchoolID)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid school claim")
		}
		principal.SchoolID = schoolID
	}
	if c.StudentID != "" {
		studentID, err := id.ParseStudentID(c.StudentID)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid student claim")
		}
		principal.StudentID = studentID
	}
	if c.Features != nil {
		features := make([]identity.Feature, 0, len(*c.Features))
		for _, raw := range *c.Features {
			// Unknown feature ids in old tokens are dropped rather than
			// failing the whole session.
			if f, err := identity.ParseFeature(raw); err == nil {
				features = append(features, f)
			}
		}
		principal.Features = features
	}
	return principal, nil
}
