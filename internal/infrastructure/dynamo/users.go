package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dultive/dultive-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
//
// DynamoDB has no unique secondary indexes, so Create writes the user item
// together with marker items (email#…, cpf#…, cnpj#…) in the constraints
// table inside one TransactWriteItems call. Each marker put is guarded by
// attribute_not_exists(pk), making the transaction the final arbiter for
// uniqueness under concurrent registration.
type UserRepo struct {
	client           *dynamodb.Client
	tableName        string
	constraintsTable string
}

func NewUserRepo(client *dynamodb.Client, tableName, constraintsTable string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName, constraintsTable: constraintsTable}
}

// Create atomically persists the user and its uniqueness markers. When a
// marker already exists, it returns a DuplicateFieldError naming the field.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	items := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:           aws.String(r.tableName),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(user_id)"),
		},
	}}
	// fields[i] names the unique field guarded by items[i]; "" for the user row.
	fields := []string{""}

	addMarker := func(field, value string) {
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(r.constraintsTable),
				Item: map[string]types.AttributeValue{
					"pk":      &types.AttributeValueMemberS{Value: field + "#" + value},
					"user_id": &types.AttributeValueMemberS{Value: u.UserID},
				},
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			},
		})
		fields = append(fields, field)
	}

	addMarker("email", u.Email)
	if u.CPF != nil {
		addMarker("cpf", *u.CPF)
	}
	if u.CNPJ != nil {
		addMarker("cnpj", *u.CNPJ)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err == nil {
		return nil
	}

	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for i, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" && i < len(fields) && fields[i] != "" {
				return &domain.DuplicateFieldError{Field: fields[i]}
			}
		}
		return fmt.Errorf("duplicate record: %w", domain.ErrConflict)
	}
	return fmt.Errorf("create user: %w", err)
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("email-index"),
		KeyConditionExpression:    aws.String("#e = :v"),
		ExpressionAttributeNames:  map[string]string{"#e": "email"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

// AddPoints increments the user's points counter server-side.
func (r *UserRepo) AddPoints(ctx context.Context, userID string, delta int) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("user_id", userID),
		UpdateExpression: aws.String("ADD points :d"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", delta)},
		},
		ConditionExpression: aws.String("attribute_exists(user_id)"),
	})
	return err
}
