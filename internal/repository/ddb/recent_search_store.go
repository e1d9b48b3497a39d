package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"worldloom-backend/internal/repository"
)

// RecentSearchStore persists a user's recent search terms as a single
// item with a TTL, so abandoned histories age out on their own.
type RecentSearchStore struct {
	client    *dynamodb.Client
	tableName string
	ttl       time.Duration
}

var _ repository.RecentSearchStore = (*RecentSearchStore)(nil)

// NewRecentSearchStore creates a new RecentSearchStore
func NewRecentSearchStore(client *dynamodb.Client, tableName string, ttl time.Duration) *RecentSearchStore {
	if ttl == 0 {
		ttl = 90 * 24 * time.Hour
	}
	return &RecentSearchStore{client: client, tableName: tableName, ttl: ttl}
}

type recentSearchItem struct {
	PK        string   `dynamodbav:"PK"`
	SK        string   `dynamodbav:"SK"`
	Terms     []string `dynamodbav:"Terms"`
	UpdatedAt string   `dynamodbav:"UpdatedAt"`
	TTL       int64    `dynamodbav:"TTL"`
}

// SaveRecentSearches overwrites the user's search history
func (s *RecentSearchStore) SaveRecentSearches(ctx context.Context, userID string, terms []string) error {
	av, err := attributevalue.MarshalMap(recentSearchItem{
		PK:        userPK(userID),
		SK:        skRecentSearch,
		Terms:     terms,
		UpdatedAt: time.Now().Format(time.RFC3339),
		TTL:       time.Now().Add(s.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal recent searches: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return mapError(err, "recent_searches", userID)
	}
	return nil
}

// LoadRecentSearches returns the user's search history, empty when none
// has been saved yet.
func (s *RecentSearchStore) LoadRecentSearches(ctx context.Context, userID string) ([]string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: skRecentSearch},
		},
	})
	if err != nil {
		return nil, mapError(err, "recent_searches", userID)
	}
	if out.Item == nil {
		return []string{}, nil
	}

	var item recentSearchItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recent searches: %w", err)
	}
	return item.Terms, nil
}
