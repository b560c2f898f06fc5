package db

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

// HashString hashes a given string using SHA-256 and returns its hex representation.
func HashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// client is created once by InitFirestore; clientOnce guards it and clientErr
// keeps the first failure for later callers.
var (
	client     *firestore.Client
	clientErr  error
	clientOnce sync.Once
)

// InitFirestore initializes and returns the shared Firestore client.
// encodedCreds is the base64 service account JSON. Later calls return the
// first call's client and error.
func InitFirestore(ctx context.Context, encodedCreds, projectID string) (*firestore.Client, error) {
	clientOnce.Do(func() {
		client, clientErr = newClient(ctx, encodedCreds, projectID)
	})
	return client, clientErr
}

func newClient(ctx context.Context, encodedCreds, projectID string) (*firestore.Client, error) {
	if encodedCreds == "" {
		return nil, errors.New("firestore credentials are empty")
	}
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Firestore credentials: %w", err)
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	c, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}
	return c, nil
}

// CloseFirestore closes the Firestore client.
func CloseFirestore() {
	if client != nil {
		client.Close()
	}
}
