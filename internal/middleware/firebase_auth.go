package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/pkg/errors"
)

// userFromFirebase verifies a Firebase ID token and maps its UID to the
// local user. Accounts that never went through /auth/firebase-login are
// unknown here.
func userFromFirebase(ctx context.Context, client *auth.Client, users repositories.UserRepository, idToken string) (string, error) {
	token, err := client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", errors.Wrap(err, "verify firebase id token")
	}
	if users == nil {
		return "", errors.New("no user repository to resolve firebase uid")
	}
	user, err := users.GetUserByFirebaseUID(ctx, token.UID)
	if err != nil {
		return "", errors.Wrap(err, "resolve firebase uid")
	}
	return user.ID, nil
}
