// Package mfsecret loads credentials from AWS Secrets Manager and overlays
// them onto options that were left empty on the command line.
package mfsecret

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/savaki/secrets"
)

// Credentials is the JSON document stored in the secret. Keys match the
// environment variable names so the same values can live in a .env file.
type Credentials struct {
	SMSAPIKey        string `json:"SMS_API_KEY"`
	SMSAPISecret     string `json:"SMS_API_SECRET"`
	SupabaseKey      string `json:"SUPABASE_KEY"`
	SupabaseEmail    string `json:"SUPABASE_USER_EMAIL"`
	SupabasePassword string `json:"SUPABASE_USER_PASSWORD"`
}

func LoadSecret(s *session.Session, secretName string, data interface{}) error {
	api := secrets.WithSecretsManager(secretsmanager.New(s))
	manager, err := secrets.NewManager(api)
	if err != nil {
		return fmt.Errorf("failed to initialize secrets: %w", err)
	}

	if err := manager.Decode(secretName, &data); err != nil {
		return fmt.Errorf("failed to load secret %v: %w", secretName, err)
	}
	return nil
}

// Target pairs an option with the secret value that may fill it.
type Target struct {
	Dest  *string
	Value string
}

// Overlay copies each non-empty secret value into its option unless the
// option was already set. Explicit flags and environment variables win.
func Overlay(targets ...Target) int {
	var n int
	for _, t := range targets {
		if t.Value == "" || *t.Dest != "" {
			continue
		}
		*t.Dest = t.Value
		n++
	}
	return n
}
