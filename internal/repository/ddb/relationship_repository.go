package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/repository"
)

// RelationshipRepository implements repository.RelationshipRepository using DynamoDB
type RelationshipRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ repository.RelationshipRepository = (*RelationshipRepository)(nil)

// NewRelationshipRepository creates a new RelationshipRepository
func NewRelationshipRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *RelationshipRepository {
	return &RelationshipRepository{client: client, tableName: tableName, logger: logger}
}

// relationshipItem represents the DynamoDB item structure for a relationship
type relationshipItem struct {
	PK             string `dynamodbav:"PK"`
	SK             string `dynamodbav:"SK"`
	EntityType     string `dynamodbav:"EntityType"`
	RelationshipID string `dynamodbav:"RelationshipID"`
	ProjectID      string `dynamodbav:"ProjectID"`
	SourceID       string `dynamodbav:"SourceID"`
	TargetID       string `dynamodbav:"TargetID"`
	Type           string `dynamodbav:"Type"`
	Description    string `dynamodbav:"Description,omitempty"`
	SourceName     string `dynamodbav:"SourceName"`
	SourceCategory string `dynamodbav:"SourceCategory"`
	TargetName     string `dynamodbav:"TargetName"`
	TargetCategory string `dynamodbav:"TargetCategory"`
	CreatedAt      string `dynamodbav:"CreatedAt"`
}

func relationshipToItem(userID string, rel *domain.Relationship) relationshipItem {
	return relationshipItem{
		PK:             projectPK(userID, rel.ProjectID),
		SK:             skRelPrefix + rel.ID,
		EntityType:     "RELATIONSHIP",
		RelationshipID: rel.ID,
		ProjectID:      rel.ProjectID,
		SourceID:       rel.SourceID,
		TargetID:       rel.TargetID,
		Type:           rel.Type.String(),
		Description:    rel.Description,
		SourceName:     rel.Source.Name,
		SourceCategory: rel.Source.Category.String(),
		TargetName:     rel.Target.Name,
		TargetCategory: rel.Target.Category.String(),
		CreatedAt:      rel.CreatedAt.Format(time.RFC3339Nano),
	}
}

func itemToRelationship(item relationshipItem) *domain.Relationship {
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	return &domain.Relationship{
		ID:          item.RelationshipID,
		ProjectID:   item.ProjectID,
		SourceID:    item.SourceID,
		TargetID:    item.TargetID,
		Type:        domain.RelationshipType(item.Type),
		Description: item.Description,
		Source: domain.EndpointSnapshot{
			Name:     item.SourceName,
			Category: domain.Category(item.SourceCategory),
		},
		Target: domain.EndpointSnapshot{
			Name:     item.TargetName,
			Category: domain.Category(item.TargetCategory),
		},
		CreatedAt: createdAt,
	}
}

// CreateRelationship persists a relationship record
func (r *RelationshipRepository) CreateRelationship(ctx context.Context, userID string, rel *domain.Relationship) error {
	av, err := attributevalue.MarshalMap(relationshipToItem(userID, rel))
	if err != nil {
		return fmt.Errorf("failed to marshal relationship: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		r.logger.Error("failed to save relationship",
			zap.String("relationshipID", rel.ID),
			zap.String("sourceID", rel.SourceID),
			zap.String("targetID", rel.TargetID),
			zap.Error(err),
		)
		return mapError(err, "relationship", rel.ID)
	}
	return nil
}

// FindRelationshipByID loads a single relationship
func (r *RelationshipRepository) FindRelationshipByID(ctx context.Context, userID, projectID, relationshipID string) (*domain.Relationship, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: projectPK(userID, projectID)},
			"SK": &types.AttributeValueMemberS{Value: skRelPrefix + relationshipID},
		},
	})
	if err != nil {
		return nil, mapError(err, "relationship", relationshipID)
	}
	if out.Item == nil {
		return nil, repository.NewNotFound("relationship", relationshipID)
	}

	var item relationshipItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal relationship: %w", err)
	}
	return itemToRelationship(item), nil
}

// FindRelationshipsByProject lists the full relationship collection of a project
func (r *RelationshipRepository) FindRelationshipsByProject(ctx context.Context, userID, projectID string) ([]*domain.Relationship, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(projectPK(userID, projectID))).
		And(expression.Key("SK").BeginsWith(skRelPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	relationships := make([]*domain.Relationship, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError(err, "relationship", "")
		}
		for _, raw := range page.Items {
			var item relationshipItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable relationship item", zap.Error(err))
				continue
			}
			relationships = append(relationships, itemToRelationship(item))
		}
	}
	return relationships, nil
}

// DeleteRelationship removes one relationship record. A paired reverse
// record is never looked up; each direction is deleted independently.
func (r *RelationshipRepository) DeleteRelationship(ctx context.Context, userID, projectID, relationshipID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: projectPK(userID, projectID)},
			"SK": &types.AttributeValueMemberS{Value: skRelPrefix + relationshipID},
		},
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		if repository.IsConflict(mapError(err, "relationship", relationshipID)) {
			return repository.NewNotFound("relationship", relationshipID)
		}
		return mapError(err, "relationship", relationshipID)
	}
	return nil
}

// DeleteRelationshipsForElement removes every relationship touching the
// element, batching deletes 25 at a time.
func (r *RelationshipRepository) DeleteRelationshipsForElement(ctx context.Context, userID, projectID, elementID string) (int, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(projectPK(userID, projectID))).
		And(expression.Key("SK").BeginsWith(skRelPrefix))
	filter := expression.Name("SourceID").Equal(expression.Value(elementID)).
		Or(expression.Name("TargetID").Equal(expression.Value(elementID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build query expression: %w", err)
	}

	var sortKeys []string
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ProjectionExpression:      aws.String("SK"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, mapError(err, "relationship", "")
		}
		for _, raw := range page.Items {
			if sk, ok := raw["SK"].(*types.AttributeValueMemberS); ok {
				sortKeys = append(sortKeys, sk.Value)
			}
		}
	}

	// BatchWriteItem accepts at most 25 requests per call
	const batchSize = 25
	pk := projectPK(userID, projectID)
	for start := 0; start < len(sortKeys); start += batchSize {
		end := start + batchSize
		if end > len(sortKeys) {
			end = len(sortKeys)
		}

		writes := make([]types.WriteRequest, 0, end-start)
		for _, sk := range sortKeys[start:end] {
			writes = append(writes, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: pk},
						"SK": &types.AttributeValueMemberS{Value: sk},
					},
				},
			})
		}

		// Throttling can leave part of a batch unprocessed; retry those so
		// the returned count never includes dangling relationships
		err := batchWriteWithRetry(ctx, writes, func(ctx context.Context, pending []types.WriteRequest) ([]types.WriteRequest, error) {
			out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{r.tableName: pending},
			})
			if err != nil {
				return nil, mapError(err, "relationship", "")
			}
			return out.UnprocessedItems[r.tableName], nil
		})
		if err != nil {
			return 0, err
		}
	}

	return len(sortKeys), nil
}
