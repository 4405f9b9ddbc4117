package auth

import (
	"context"

	"flightdeck/logbook/internal/db/repositories"
	"flightdeck/logbook/internal/logging"
)

// MakeClaimsFromApi resolves the external user id carried in the request
// headers to a stored user. The uuid stays empty when the user is unknown;
// callers treat that as unauthenticated.
func MakeClaimsFromApi(ctx context.Context, repo *repositories.UserRepositoryGORM, externalID string) *APIKeyClaims {

	user, err := repo.FindByExternalID(ctx, externalID)
	if err != nil {
		logging.Warn("API key auth: user lookup failed", "external_id", externalID, "error", err.Error())
		return &APIKeyClaims{ExternalIDVal: externalID}
	}

	return &APIKeyClaims{
		UserUUID:      user.ID,
		ExternalIDVal: externalID,
	}
}
