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

// ProjectRepository implements repository.ProjectRepository using DynamoDB
type ProjectRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{client: client, tableName: tableName, logger: logger}
}

// projectItem represents the DynamoDB item structure for a project
type projectItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntityType  string `dynamodbav:"EntityType"`
	ProjectID   string `dynamodbav:"ProjectID"`
	UserID      string `dynamodbav:"UserID"`
	Name        string `dynamodbav:"Name"`
	Description string `dynamodbav:"Description,omitempty"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

func projectToItem(project *domain.Project) projectItem {
	return projectItem{
		PK:          userPK(project.UserID),
		SK:          skProjectPrefix + project.ID,
		EntityType:  "PROJECT",
		ProjectID:   project.ID,
		UserID:      project.UserID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   project.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func itemToProject(item projectItem) *domain.Project {
	createdAt, _ := time.Parse(time.RFC3339Nano, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	return &domain.Project{
		ID:          item.ProjectID,
		UserID:      item.UserID,
		Name:        item.Name,
		Description: item.Description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// CreateProject persists a new project, rejecting duplicates
func (r *ProjectRepository) CreateProject(ctx context.Context, project *domain.Project) error {
	av, err := attributevalue.MarshalMap(projectToItem(project))
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		r.logger.Error("failed to save project",
			zap.String("projectID", project.ID),
			zap.Error(err),
		)
		return mapError(err, "project", project.ID)
	}
	return nil
}

// FindProjectByID loads a single project owned by the user
func (r *ProjectRepository) FindProjectByID(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: skProjectPrefix + projectID},
		},
	})
	if err != nil {
		return nil, mapError(err, "project", projectID)
	}
	if out.Item == nil {
		return nil, repository.NewNotFound("project", projectID)
	}

	var item projectItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	return itemToProject(item), nil
}

// FindProjectsByUser lists every project owned by the user
func (r *ProjectRepository) FindProjectsByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userPK(userID))).
		And(expression.Key("SK").BeginsWith(skProjectPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	projects := make([]*domain.Project, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapError(err, "project", "")
		}
		for _, raw := range page.Items {
			var item projectItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping unreadable project item", zap.Error(err))
				continue
			}
			projects = append(projects, itemToProject(item))
		}
	}
	return projects, nil
}

// UpdateProject overwrites an existing project
func (r *ProjectRepository) UpdateProject(ctx context.Context, project *domain.Project) error {
	av, err := attributevalue.MarshalMap(projectToItem(project))
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		if repository.IsConflict(mapError(err, "project", project.ID)) {
			return repository.NewNotFound("project", project.ID)
		}
		return mapError(err, "project", project.ID)
	}
	return nil
}

// DeleteProject removes a project record
func (r *ProjectRepository) DeleteProject(ctx context.Context, userID, projectID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(userID)},
			"SK": &types.AttributeValueMemberS{Value: skProjectPrefix + projectID},
		},
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		if repository.IsConflict(mapError(err, "project", projectID)) {
			return repository.NewNotFound("project", projectID)
		}
		return mapError(err, "project", projectID)
	}
	return nil
}
