package middleware

import (
	"context"
	"fmt"

	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the claims read from an HS256 access token. The
// subject is the caller's stable identifier at the issuer.
type IdentityClaims struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver verifies HS256 tokens issued by a trusted identity service.
type JWTResolver struct {
	secret   []byte
	issuer   string
	profiles SubjectProvisioner
}

func NewJWTResolver(secret, issuer string, profiles SubjectProvisioner) *JWTResolver {
	return &JWTResolver{secret: []byte(secret), issuer: issuer, profiles: profiles}
}

func (r *JWTResolver) Resolve(ctx context.Context, tokenString string) (uint, error) {
	claims := &IdentityClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return 0, ErrInvalidToken
	}

	profile, err := r.profiles.ResolveSubject(ctx, "jwt:"+claims.Subject, models.ProfileSeed{
		DisplayName: claims.Name,
		AvatarURL:   claims.Picture,
	})
	if err != nil {
		return 0, fmt.Errorf("resolve subject: %w", err)
	}
	return profile.ID, nil
}
