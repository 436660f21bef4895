// Package dynamodb stores saved prompts in a single DynamoDB table keyed by
// user (PK) and prompt (SK).
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
	pkgerrors "promptbuilder/pkg/errors"
)

const (
	userKeyPrefix   = "USER#"
	promptKeyPrefix = "PROMPT#"
	entityPrompt    = "PROMPT"
)

// API is the subset of the DynamoDB client the repository calls
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

// promptItem is the DynamoDB item for a saved prompt
type promptItem struct {
	PK         string   `dynamodbav:"PK"`
	SK         string   `dynamodbav:"SK"`
	EntityType string   `dynamodbav:"EntityType"`
	PromptID   string   `dynamodbav:"PromptID"`
	UserID     string   `dynamodbav:"UserID"`
	Title      string   `dynamodbav:"Title"`
	Content    string   `dynamodbav:"Content"`
	Tags       []string `dynamodbav:"Tags"`
	CreatedAt  string   `dynamodbav:"CreatedAt"`
	UpdatedAt  string   `dynamodbav:"UpdatedAt"`
	Version    int      `dynamodbav:"Version"`
}

// PromptRepository implements ports.PromptRepository on DynamoDB
type PromptRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewPromptRepository creates a repository over the given table
func NewPromptRepository(client API, tableName string, logger *zap.Logger) *PromptRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func userKey(userID string) string { return userKeyPrefix + userID }
func promptKey(promptID string) string { return promptKeyPrefix + promptID }

func toItem(p *entities.SavedPrompt) promptItem {
	return promptItem{
		PK:         userKey(p.UserID()),
		SK:         promptKey(p.ID()),
		EntityType: entityPrompt,
		PromptID:   p.ID(),
		UserID:     p.UserID(),
		Title:      p.Content().Title(),
		Content:    p.Content().Body(),
		Tags:       p.Tags(),
		CreatedAt:  p.CreatedAt().UTC().Format(time.RFC3339Nano),
		UpdatedAt:  p.UpdatedAt().UTC().Format(time.RFC3339Nano),
		Version:    p.Version(),
	}
}

func (i promptItem) toEntity() (*entities.SavedPrompt, error) {
	content, err := valueobjects.NewPromptContent(i.Title, i.Content)
	if err != nil {
		return nil, fmt.Errorf("stored prompt %s: %w", i.PromptID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("stored prompt %s: created at: %w", i.PromptID, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, i.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}
	return entities.ReconstructSavedPrompt(i.PromptID, i.UserID, content, i.Tags, createdAt, updatedAt, i.Version)
}

func (r *PromptRepository) key(userID, promptID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: userKey(userID)},
		"SK": &types.AttributeValueMemberS{Value: promptKey(promptID)},
	}
}

// Save writes the prompt. The write is rejected with a Conflict error when
// the stored copy already has the same or a newer version.
func (r *PromptRepository) Save(ctx context.Context, prompt *entities.SavedPrompt) error {
	item, err := attributevalue.MarshalMap(toItem(prompt))
	if err != nil {
		return fmt.Errorf("failed to marshal prompt: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK")).
		Or(expression.Name("Version").LessThan(expression.Value(prompt.Version())))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewConflictError(
				fmt.Sprintf("prompt %s was modified concurrently", prompt.ID()))
		}
		r.logger.Error("Failed to save prompt",
			zap.String("promptID", prompt.ID()),
			zap.String("userID", prompt.UserID()),
			zap.Error(err))
		return pkgerrors.NewDatabaseError("save prompt", err)
	}
	return nil
}

// GetByID fetches one prompt
func (r *PromptRepository) GetByID(ctx context.Context, userID, promptID string) (*entities.SavedPrompt, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            r.key(userID, promptID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get prompt", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("prompt").WithCode(pkgerrors.CodePromptNotFound)
	}

	var item promptItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompt: %w", err)
	}
	return item.toEntity()
}

// ListByUser queries every prompt in the user's partition, newest first
func (r *PromptRepository) ListByUser(ctx context.Context, userID string) ([]*entities.SavedPrompt, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(userKey(userID))).
		And(expression.Key("SK").BeginsWith(promptKeyPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var prompts []*entities.SavedPrompt
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list prompts", err)
		}

		var items []promptItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
		}
		for _, item := range items {
			p, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping unreadable prompt item",
					zap.String("userID", userID),
					zap.String("promptID", item.PromptID),
					zap.Error(err))
				continue
			}
			prompts = append(prompts, p)
		}
	}

	slices.SortStableFunc(prompts, func(a, b *entities.SavedPrompt) int {
		if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID(), b.ID())
	})
	return prompts, nil
}

// Delete removes the prompt; deleting a missing prompt is a NotFound error
func (r *PromptRepository) Delete(ctx context.Context, userID, promptID string) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      r.key(userID, promptID),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewNotFoundError("prompt").WithCode(pkgerrors.CodePromptNotFound)
		}
		r.logger.Error("Failed to delete prompt",
			zap.String("promptID", promptID),
			zap.String("userID", userID),
			zap.Error(err))
		return pkgerrors.NewDatabaseError("delete prompt", err)
	}
	return nil
}
