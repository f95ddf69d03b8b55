package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/swasthya/internal/models"
)

// AdminLookup reports the hospitals a user administers.
type AdminLookup interface {
	AdminHospitalIDs(ctx context.Context, uid string) ([]string, error)
}

// Resolver turns a bearer token into a Session.
type Resolver struct {
	verifier *TokenVerifier
	admins   AdminLookup
	log      *slog.Logger
}

func NewResolver(verifier *TokenVerifier, admins AdminLookup, log *slog.Logger) *Resolver {
	return &Resolver{verifier: verifier, admins: admins, log: log}
}

// Resolve returns the guest session for an empty token, an error for an invalid one,
// and otherwise a user session that is promoted to admin when the user owns a listing.
func (r *Resolver) Resolve(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.GuestSession(), nil
	}

	uid, err := r.verifier.Verify(token)
	if err != nil {
		return models.GuestSession(), err
	}

	ids, err := r.admins.AdminHospitalIDs(ctx, uid)
	if err != nil {
		return models.GuestSession(), fmt.Errorf("failed to resolve administered hospitals: %w", err)
	}

	session := models.Session{UID: uid, Role: models.RoleUser, HospitalIDs: ids}
	if len(ids) > 0 {
		session.Role = models.RoleAdmin
	}

	r.log.DebugContext(ctx, "Session resolved", "uid", uid, "role", session.Role)

	return session, nil
}
