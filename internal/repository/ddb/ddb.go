// Package ddb implements the repository interfaces on DynamoDB using a
// single-table design. Key layout:
//
//	Project:        PK=USER#<userID>                      SK=PROJECT#<projectID>
//	Element:        PK=USER#<userID>#PROJECT#<projectID>  SK=ELEMENT#<elementID>
//	Relationship:   PK=USER#<userID>#PROJECT#<projectID>  SK=REL#<relationshipID>
//	Template:       PK=USER#<userID>#PROJECT#<projectID>  SK=TEMPLATE#<category>
//	RecentSearches: PK=USER#<userID>                      SK=RECENTSEARCH
package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"worldloom-backend/internal/repository"
)

const (
	skProjectPrefix  = "PROJECT#"
	skElementPrefix  = "ELEMENT#"
	skRelPrefix      = "REL#"
	skTemplatePrefix = "TEMPLATE#"
	skRecentSearch   = "RECENTSEARCH"
)

// NewClient creates a DynamoDB client for the given region
func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func userPK(userID string) string {
	return "USER#" + userID
}

func projectPK(userID, projectID string) string {
	return "USER#" + userID + "#PROJECT#" + projectID
}

// maxBatchRetries bounds resubmission of unprocessed BatchWriteItem
// requests before giving up
const maxBatchRetries = 3

// batchWriteWithRetry submits write requests through send, resubmitting
// whatever DynamoDB reports as unprocessed. send returns the unprocessed
// requests for the table. Fails if items remain after maxBatchRetries.
func batchWriteWithRetry(ctx context.Context, writes []types.WriteRequest, send func(context.Context, []types.WriteRequest) ([]types.WriteRequest, error)) error {
	for attempt := 0; len(writes) > 0; attempt++ {
		unprocessed, err := send(ctx, writes)
		if err != nil {
			return err
		}
		if len(unprocessed) == 0 {
			return nil
		}
		if attempt == maxBatchRetries {
			return fmt.Errorf("%d write requests unprocessed after %d retries", len(unprocessed), maxBatchRetries)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
		writes = unprocessed
	}
	return nil
}

// mapError translates DynamoDB API errors into repository errors so
// callers never depend on AWS error types.
func mapError(err error, resource, id string) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ConditionalCheckFailedException":
			return repository.NewConflict(resource, id, "conditional check failed")
		case "ResourceNotFoundException":
			return fmt.Errorf("dynamodb table missing: %w", err)
		}
	}
	return err
}
