package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dultive/dultive-api/internal/domain"
)

// InteractionRepo manages donation hand-off records.
type InteractionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewInteractionRepo(client *dynamodb.Client, tableName string) *InteractionRepo {
	return &InteractionRepo{client: client, tableName: tableName}
}

func (r *InteractionRepo) Put(ctx context.Context, i *domain.Interaction) error {
	item, err := attributevalue.MarshalMap(i)
	if err != nil {
		return fmt.Errorf("marshal interaction: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *InteractionRepo) Get(ctx context.Context, interactionID string) (*domain.Interaction, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("interaction_id", interactionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("interaction not found: %w", domain.ErrNotFound)
	}
	var i domain.Interaction
	if err := attributevalue.UnmarshalMap(out.Item, &i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InteractionRepo) Update(ctx context.Context, interactionID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("interaction_id", interactionID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

// QueryByPost returns all interactions for a post via the post GSI.
func (r *InteractionRepo) QueryByPost(ctx context.Context, postID string) ([]domain.Interaction, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("post_id-index"),
		KeyConditionExpression: aws.String("post_id = :p"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: postID},
		},
	})
	if err != nil {
		return nil, err
	}
	var interactions []domain.Interaction
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &interactions); err != nil {
		return nil, err
	}
	return interactions, nil
}
