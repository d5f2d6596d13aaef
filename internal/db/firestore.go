package db

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"pymepos-backend-go/internal/config"
)

// Clients bundles the Firebase-backed clients the application depends on.
// They are constructed once at startup and injected everywhere they are
// needed; nothing in this package holds them as globals.
type Clients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
}

// NewClients initializes the Firebase Admin SDK and returns the Firestore and
// Auth clients. Credential resolution order: inline service-account JSON from
// the environment, then a credentials file path, then Application Default
// Credentials.
func NewClients(ctx context.Context, appConfig *config.Config) (*Clients, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("NewClients: appConfig cannot be nil")
	}

	var credsOption option.ClientOption
	switch {
	case appConfig.FirebaseServiceAccountJSON != "":
		credsOption = option.WithCredentialsJSON([]byte(appConfig.FirebaseServiceAccountJSON))
	case appConfig.GoogleApplicationCredentials != "":
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			return nil, fmt.Errorf("credentials file does not exist: %s", appConfig.GoogleApplicationCredentials)
		}
		credsOption = option.WithCredentialsFile(appConfig.GoogleApplicationCredentials)
	default:
		// Rely on Application Default Credentials (GCE, GKE, Cloud Run...).
	}

	firebaseAppConfig := &firebase.Config{ProjectID: appConfig.FirebaseProjectID}

	var app *firebase.App
	var err error
	if credsOption != nil {
		app, err = firebase.NewApp(ctx, firebaseAppConfig, credsOption)
	} else {
		app, err = firebase.NewApp(ctx, firebaseAppConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close() // best effort
		return nil, fmt.Errorf("app.Auth: %w", err)
	}

	return &Clients{Firestore: fsClient, Auth: authClient}, nil
}

// Close releases the underlying client connections.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

// FirebaseIdentity adapts the Firebase Auth client to the identity-deletion
// contract used by the account deletion orchestrator: deleting an already
// absent user is success, everything else surfaces.
type FirebaseIdentity struct {
	client *auth.Client
}

// NewFirebaseIdentity creates a FirebaseIdentity over an initialized Auth client.
func NewFirebaseIdentity(client *auth.Client) *FirebaseIdentity {
	return &FirebaseIdentity{client: client}
}

// DeleteUser removes the identity record for uid. A user-not-found error from
// the provider is swallowed so that re-running a deletion is idempotent.
func (f *FirebaseIdentity) DeleteUser(ctx context.Context, uid string) error {
	err := f.client.DeleteUser(ctx, uid)
	if err != nil && auth.IsUserNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete identity record for uid '%s': %w", uid, err)
	}
	return nil
}
