package mfcli

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
)

// AWSSession builds the shared AWS session for the configured region.
func AWSSession() (*session.Session, error) {
	s, err := session.NewSession(aws.NewConfig().WithRegion(CommonOpts.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}
	return s, nil
}
