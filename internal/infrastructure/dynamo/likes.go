package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dultive/dultive-api/internal/domain"
)

// LikeRepo manages like rows. PK: post_id, SK: user_id.
type LikeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewLikeRepo(client *dynamodb.Client, tableName string) *LikeRepo {
	return &LikeRepo{client: client, tableName: tableName}
}

func (r *LikeRepo) Put(ctx context.Context, l *domain.Like) error {
	item, err := attributevalue.MarshalMap(l)
	if err != nil {
		return fmt.Errorf("marshal like: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *LikeRepo) Get(ctx context.Context, postID, userID string) (*domain.Like, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("post_id", postID, "user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("like not found: %w", domain.ErrNotFound)
	}
	var l domain.Like
	if err := attributevalue.UnmarshalMap(out.Item, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LikeRepo) Delete(ctx context.Context, postID, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("post_id", postID, "user_id", userID),
	})
	return err
}
