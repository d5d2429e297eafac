package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"wheelsup-backend-go/internal/config"
)

// Clients bundles the Firebase Admin handles the server needs.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Auth      *auth.Client
}

// InitFirebase initializes the Firebase Admin SDK and returns Firestore and Auth clients.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS (file), FIREBASE_SERVICE_ACCOUNT_JSON_BASE64,
// or Application Default Credentials, in that order.
func InitFirebase(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*Clients, error) {
	if appConfig == nil {
		return nil, errors.New("InitFirebase: appConfig cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []option.ClientOption
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			logger.Warn("Credentials file does not exist; falling back to whatever ADC provides",
				zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		opts = append(opts, option.WithCredentialsFile(appConfig.GoogleApplicationCredentials))
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		logger.Info("Initializing Firebase with base64 service account JSON")
		decodedJSON, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(decodedJSON))
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: appConfig.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized", zap.String("projectID", appConfig.FirebaseProjectID))
	return &Clients{App: app, Firestore: fsClient, Auth: authClient}, nil
}

// Close releases the Firestore connection.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
