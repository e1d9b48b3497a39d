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

// ElementRepository implements repository.ElementRepository using DynamoDB
type ElementRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ repository.ElementRepository = (*ElementRepository)(nil)

// NewElementRepository creates a new ElementRepository
func NewElementRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *ElementRepository {
	return &ElementRepository{client: client, tableName: tableName, logger: logger}
}

// elementItem represents the DynamoDB item structure for an element
type elementItem struct {
	PK          string            `dynamodbav:"PK"`
	SK          string            `dynamodbav:"SK"`
	EntityType  string            `dynamodbav:"EntityType"`
	ElementID   string            `dynamodbav:"ElementID"`
	ProjectID   string            `dynamodbav:"ProjectID"`
	Category    string            `dynamodbav:"Category"`
	Name        string            `dynamodbav:"Name"`
	Description string            `dynamodbav:"Description,omitempty"`
	Tags        []string          `dynamodbav:"Tags,omitempty"`
	Answers     map[string]string `dynamodbav:"Answers,omitempty"`
	CreatedAt   string            `dynamodbav:"CreatedAt"`
	UpdatedAt   string            `dynamodbav:"UpdatedAt"`
}

func elementToItem(userID string, element *domain.Element) elementItem {
	return elementItem{
		PK:          projectPK(userID, element.ProjectID),
		SK:          skElementPrefix + element.ID,
		EntityType:  "ELEMENT",
		ElementID:   element.ID,
		ProjectID:   element.ProjectID,
		Category:    element.Category.String(),
		Name:        element.Name,
		Description: element.Description,
		Tags:        element.Tags,
		Answers:     element.Answers,
		CreatedAt:   element.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   element.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func itemToElement(item elementItem) *domain.Element {
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	answers := item.Answers
	if answers == nil {
		answers = make(map[string]string)
	}
	return &domain.Element{
		ID:          item.ElementID,
		ProjectID:   item.ProjectID,
		Category:    domain.Category(item.Category),
		Name:        item.Name,
		Description: item.Description,
		Tags:        item.Tags,
		Answers:     answers,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// CreateElement persists a new element, rejecting duplicates
func (r *ElementRepository) CreateElement(ctx context.Context, userID string, element *domain.Element) error {
	av, err := attributevalue.MarshalMap(elementToItem(userID, element))
	if err != nil {
		return fmt.Errorf("failed to marshal element: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		r.logger.Error("failed to save element",
			zap.String("elementID", element.ID),
			zap.String("projectID", element.ProjectID),
			zap.Error(err),
		)
		return mapError(err, "element", element.ID)
	}
	return nil
}

// FindElementByID loads a single element
func (r *ElementRepository) FindElementByID(ctx context.Context, userID, projectID, elementID string) (*domain.Element, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: projectPK(userID, projectID)},
			"SK": &types.AttributeValueMemberS{Value: skElementPrefix + elementID},
		},
	})
	if err != nil {
		return nil, mapError(err, "element", elementID)
	}
	if out.Item == nil {
		return nil, repository.NewNotFound("element", elementID)
	}

	var item elementItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal element: %w", err)
	}
	return itemToElement(item), nil
}

// FindElementsByProject lists every element in the project
func (r *ElementRepository) FindElementsByProject(ctx context.Context, userID, projectID string) ([]*domain.Element, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(projectPK(userID, projectID))).
		And(expression.Key("SK").BeginsWith(skElementPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	elements := make([]*domain.Element, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError(err, "element", "")
		}
		for _, raw := range page.Items {
			var item elementItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable element item", zap.Error(err))
				continue
			}
			elements = append(elements, itemToElement(item))
		}
	}
	return elements, nil
}

// UpdateElement overwrites an existing element
func (r *ElementRepository) UpdateElement(ctx context.Context, userID string, element *domain.Element) error {
	av, err := attributevalue.MarshalMap(elementToItem(userID, element))
	if err != nil {
		return fmt.Errorf("failed to marshal element: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		if repository.IsConflict(mapError(err, "element", element.ID)) {
			return repository.NewNotFound("element", element.ID)
		}
		return mapError(err, "element", element.ID)
	}
	return nil
}

// DeleteElement removes an element record. Relationship cascade is the
// service layer's responsibility.
func (r *ElementRepository) DeleteElement(ctx context.Context, userID, projectID, elementID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: projectPK(userID, projectID)},
			"SK": &types.AttributeValueMemberS{Value: skElementPrefix + elementID},
		},
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		if repository.IsConflict(mapError(err, "element", elementID)) {
			return repository.NewNotFound("element", elementID)
		}
		return mapError(err, "element", elementID)
	}
	return nil
}

// CountElements returns how many elements the project contains
func (r *ElementRepository) CountElements(ctx context.Context, userID, projectID string) (int, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(projectPK(userID, projectID))).
		And(expression.Key("SK").BeginsWith(skElementPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build query expression: %w", err)
	}

	count := 0
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, mapError(err, "element", "")
		}
		count += int(page.Count)
	}
	return count, nil
}
