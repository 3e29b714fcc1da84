package middleware

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/focusfeed/backend/internal/models"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseResolver verifies Firebase ID tokens.
type FirebaseResolver struct {
	verifier TokenVerifier
	profiles SubjectProvisioner
}

func NewFirebaseResolver(verifier TokenVerifier, profiles SubjectProvisioner) *FirebaseResolver {
	return &FirebaseResolver{verifier: verifier, profiles: profiles}
}

func (r *FirebaseResolver) Resolve(ctx context.Context, idToken string) (uint, error) {
	token, err := r.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	seed := models.ProfileSeed{}
	if name, ok := token.Claims["name"].(string); ok {
		seed.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		seed.AvatarURL = picture
	}

	profile, err := r.profiles.ResolveSubject(ctx, "firebase:"+token.UID, seed)
	if err != nil {
		return 0, fmt.Errorf("resolve subject: %w", err)
	}
	return profile.ID, nil
}
