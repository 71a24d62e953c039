package firebase

import (
	"context"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app with its auth and messaging clients
type App struct {
	FirebaseApp *firebase.App
	AuthClient  *auth.Client
	Messaging   *messaging.Client
}

// InitFirebase initializes the Firebase application from a service account
// file.
func InitFirebase(ctx context.Context, credentialsPath string) (*App, error) {
	if credentialsPath == "" {
		return nil, errors.New("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, errors.Wrapf(err, "firebase credentials file %s", credentialsPath)
	}

	firebaseApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, errors.Wrap(err, "initialize firebase app")
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get firebase auth client")
	}

	messagingClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get firebase messaging client")
	}

	logger.L().Info().Msg("firebase auth and messaging clients initialized")
	return &App{FirebaseApp: firebaseApp, AuthClient: authClient, Messaging: messagingClient}, nil
}
