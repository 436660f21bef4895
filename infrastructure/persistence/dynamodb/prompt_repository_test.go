package dynamodb

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbuilder/domain/core/entities"
	"promptbuilder/domain/core/valueobjects"
	pkgerrors "promptbuilder/pkg/errors"
)

// fakeDynamo keeps items in insertion order and serves queries two items per page
type fakeDynamo struct {
	items     []map[string]types.AttributeValue
	err       error
	lastPut   *dynamodb.PutItemInput
	lastQuery *dynamodb.QueryInput
	queries   int
}

func keyOf(item map[string]types.AttributeValue) string {
	return item["PK"].(*types.AttributeValueMemberS).Value + "|" + item["SK"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) find(key map[string]types.AttributeValue) int {
	for i, item := range f.items {
		if keyOf(item) == keyOf(key) {
			return i
		}
	}
	return -1
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPut = in
	if f.err != nil {
		return nil, f.err
	}
	if i := f.find(in.Item); i >= 0 {
		f.items[i] = in.Item
	} else {
		f.items = append(f.items, in.Item)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if i := f.find(in.Key); i >= 0 {
		return &dynamodb.GetItemOutput{Item: f.items[i]}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQuery = in
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	start := 0
	if in.ExclusiveStartKey != nil {
		start, _ = strconv.Atoi(in.ExclusiveStartKey["offset"].(*types.AttributeValueMemberN).Value)
	}
	end := min(start+2, len(f.items))
	out := &dynamodb.QueryOutput{Items: f.items[start:end]}
	if end < len(f.items) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"offset": &types.AttributeValueMemberN{Value: strconv.Itoa(end)},
		}
	}
	return out, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.find(in.Key)
	if i < 0 {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("The conditional request failed")}
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return &dynamodb.DeleteItemOutput{}, nil
}

func strPtr(s string) *string { return &s }

func newPrompt(t *testing.T, id string, created time.Time, tags ...string) *entities.SavedPrompt {
	t.Helper()
	content, err := valueobjects.NewPromptContent("Title "+id, "Body of "+id)
	require.NoError(t, err)
	p, err := entities.ReconstructSavedPrompt(id, "user-1", content, tags, created, created, 1)
	require.NoError(t, err)
	return p
}

func TestPromptItem_Mapping(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 123, time.UTC)
	p := newPrompt(t, "p1", created, "go", "ai")

	item := toItem(p)
	assert.Equal(t, "USER#user-1", item.PK)
	assert.Equal(t, "PROMPT#p1", item.SK)
	assert.Equal(t, "PROMPT", item.EntityType)
	assert.Equal(t, []string{"go", "ai"}, item.Tags)

	back, err := item.toEntity()
	require.NoError(t, err)
	assert.Equal(t, p.ID(), back.ID())
	assert.Equal(t, p.Content().Title(), back.Content().Title())
	assert.Equal(t, p.Content().Body(), back.Content().Body())
	assert.True(t, created.Equal(back.CreatedAt()))
	assert.Equal(t, 1, back.Version())
}

func TestPromptItem_CorruptTimestamp(t *testing.T) {
	item := toItem(newPrompt(t, "p1", time.Now()))
	item.CreatedAt = "yesterday"

	_, err := item.toEntity()
	assert.Error(t, err)
}

func TestPromptRepository_SaveAndGet(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewPromptRepository(fake, "prompts", nil)
	ctx := context.Background()

	p := newPrompt(t, "p1", time.Now().UTC(), "go")
	require.NoError(t, repo.Save(ctx, p))

	require.NotNil(t, fake.lastPut)
	assert.Equal(t, "prompts", *fake.lastPut.TableName)
	require.NotNil(t, fake.lastPut.ConditionExpression)
	assert.Contains(t, *fake.lastPut.ConditionExpression, "attribute_not_exists")

	got, err := repo.GetByID(ctx, "user-1", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Title p1", got.Content().Title())
	assert.Equal(t, []string{"go"}, got.Tags())
}

func TestPromptRepository_GetMissing(t *testing.T) {
	repo := NewPromptRepository(&fakeDynamo{}, "prompts", nil)

	_, err := repo.GetByID(context.Background(), "user-1", "nope")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Equal(t, pkgerrors.CodePromptNotFound, pkgerrors.GetAppError(err).Code)
}

func TestPromptRepository_SaveConflict(t *testing.T) {
	fake := &fakeDynamo{err: &types.ConditionalCheckFailedException{Message: strPtr("stale")}}
	repo := NewPromptRepository(fake, "prompts", nil)

	err := repo.Save(context.Background(), newPrompt(t, "p1", time.Now()))
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestPromptRepository_StoreFailure(t *testing.T) {
	fake := &fakeDynamo{err: errors.New("throttled")}
	repo := NewPromptRepository(fake, "prompts", nil)
	ctx := context.Background()

	err := repo.Save(ctx, newPrompt(t, "p1", time.Now()))
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))

	_, err = repo.ListByUser(ctx, "user-1")
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
}

func TestPromptRepository_ListByUser_NewestFirstAcrossPages(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewPromptRepository(fake, "prompts", nil)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.Save(ctx, newPrompt(t, id, base.Add(time.Duration(i)*time.Hour))))
	}

	prompts, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, fake.queries, "five items at two per page")

	ids := make([]string, len(prompts))
	for i, p := range prompts {
		ids[i] = p.ID()
	}
	assert.Equal(t, []string{"e", "d", "c", "b", "a"}, ids)

	require.NotNil(t, fake.lastQuery.KeyConditionExpression)
	assert.Contains(t, *fake.lastQuery.KeyConditionExpression, "begins_with")
}

func TestPromptRepository_ListByUser_SkipsUnreadableItems(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewPromptRepository(fake, "prompts", nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newPrompt(t, "good", time.Now())))

	bad := toItem(newPrompt(t, "bad", time.Now()))
	bad.Title = ""
	av, err := attributevalue.MarshalMap(bad)
	require.NoError(t, err)
	fake.items = append(fake.items, av)

	prompts, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "good", prompts[0].ID())
}

func TestPromptRepository_Delete(t *testing.T) {
	fake := &fakeDynamo{}
	repo := NewPromptRepository(fake, "prompts", nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newPrompt(t, "p1", time.Now())))
	require.NoError(t, repo.Delete(ctx, "user-1", "p1"))

	err := repo.Delete(ctx, "user-1", "p1")
	assert.True(t, pkgerrors.IsNotFound(err))
}
