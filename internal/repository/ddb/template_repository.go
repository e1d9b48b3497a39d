package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"worldloom-backend/internal/domain"
	"worldloom-backend/internal/repository"
)

// TemplateRepository implements repository.TemplateRepository using DynamoDB
type TemplateRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ repository.TemplateRepository = (*TemplateRepository)(nil)

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *TemplateRepository {
	return &TemplateRepository{client: client, tableName: tableName, logger: logger}
}

type templateQuestionItem struct {
	ID       string `dynamodbav:"ID"`
	Text     string `dynamodbav:"Text"`
	Required bool   `dynamodbav:"Required"`
}

type templateItem struct {
	PK         string                 `dynamodbav:"PK"`
	SK         string                 `dynamodbav:"SK"`
	EntityType string                 `dynamodbav:"EntityType"`
	Category   string                 `dynamodbav:"Category"`
	Questions  []templateQuestionItem `dynamodbav:"Questions"`
}

// SaveTemplate stores a custom questionnaire for the project and category
func (r *TemplateRepository) SaveTemplate(ctx context.Context, userID, projectID string, template domain.Template) error {
	questions := make([]templateQuestionItem, 0, len(template.Questions))
	for _, q := range template.Questions {
		questions = append(questions, templateQuestionItem{ID: q.ID, Text: q.Text, Required: q.Required})
	}

	av, err := attributevalue.MarshalMap(templateItem{
		PK:         projectPK(userID, projectID),
		SK:         skTemplatePrefix + template.Category.String(),
		EntityType: "TEMPLATE",
		Category:   template.Category.String(),
		Questions:  questions,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal template: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		r.logger.Error("failed to save template",
			zap.String("projectID", projectID),
			zap.String("category", template.Category.String()),
			zap.Error(err),
		)
		return mapError(err, "template", template.Category.String())
	}
	return nil
}

// FindTemplate loads the project's custom template for the category,
// falling back to the built-in default.
func (r *TemplateRepository) FindTemplate(ctx context.Context, userID, projectID string, category domain.Category) (domain.Template, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: projectPK(userID, projectID)},
			"SK": &types.AttributeValueMemberS{Value: skTemplatePrefix + category.String()},
		},
	})
	if err != nil {
		return domain.Template{}, mapError(err, "template", category.String())
	}

	if out.Item == nil {
		if template, ok := domain.DefaultTemplates()[category]; ok {
			return template, nil
		}
		return domain.Template{Category: category}, nil
	}

	var item templateItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return domain.Template{}, fmt.Errorf("failed to unmarshal template: %w", err)
	}

	questions := make([]domain.Question, 0, len(item.Questions))
	for _, q := range item.Questions {
		questions = append(questions, domain.Question{ID: q.ID, Text: q.Text, Required: q.Required})
	}
	return domain.Template{Category: domain.Category(item.Category), Questions: questions}, nil
}
