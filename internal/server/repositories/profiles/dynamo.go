package profiles

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/avicente/cardholder/internal/common"
	"github.com/avicente/cardholder/internal/server/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the slice of the DynamoDB client used by the repository,
// extracted so tests can fake it.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoRepository stores profiles in a DynamoDB table with a composite
// (uuid, document) key.
type DynamoRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoRepository(client DynamoAPI, table string) *DynamoRepository {
	return &DynamoRepository{client: client, table: table}
}

func (r *DynamoRepository) key(identity string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"uuid":     &types.AttributeValueMemberS{Value: identity},
		"document": &types.AttributeValueMemberS{Value: models.ProfileKind},
	}
}

func (r *DynamoRepository) CreateIfAbsent(ctx context.Context, profile *models.Profile) error {
	item, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return fmt.Errorf("marshalling profile: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#u)"),
		ExpressionAttributeNames: map[string]string{"#u": "uuid"},
	})
	if err != nil {
		var conditional *types.ConditionalCheckFailedException
		if errors.As(err, &conditional) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("%w: putting profile: %v", common.ErrorDependency, err)
	}
	return nil
}

func (r *DynamoRepository) GetByIdentity(ctx context.Context, identity string) (*models.Profile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(identity),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading profile: %v", common.ErrorDependency, err)
	}
	if len(out.Item) == 0 {
		return nil, common.ErrorNotFound
	}

	profile := &models.Profile{}
	if err := attributevalue.UnmarshalMap(out.Item, profile); err != nil {
		return nil, fmt.Errorf("unmarshalling profile: %w", err)
	}
	return profile, nil
}

func (r *DynamoRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	// No secondary index on email: pages are scanned in order and the first
	// matching item wins, even if duplicates exist.
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.table),
			FilterExpression: aws.String("#e = :e AND #doc = :d"),
			ExpressionAttributeNames: map[string]string{
				"#e":   "email",
				"#doc": "document",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":e": &types.AttributeValueMemberS{Value: email},
				":d": &types.AttributeValueMemberS{Value: models.ProfileKind},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: scanning profiles: %v", common.ErrorDependency, err)
		}

		if len(out.Items) > 0 {
			profile := &models.Profile{}
			if err := attributevalue.UnmarshalMap(out.Items[0], profile); err != nil {
				return nil, fmt.Errorf("unmarshalling profile: %w", err)
			}
			return profile, nil
		}

		if out.LastEvaluatedKey == nil {
			return nil, common.ErrorNotFound
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *DynamoRepository) UpdateFields(ctx context.Context, identity string, fields map[string]any) (*models.Profile, error) {
	if len(fields) == 0 {
		return nil, common.ErrorValidation
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	expr := "SET "
	exprNames := map[string]string{"#u": "uuid"}
	exprValues := map[string]types.AttributeValue{}
	for i, name := range names {
		if i > 0 {
			expr += ", "
		}
		expr += fmt.Sprintf("#f%d = :v%d", i, i)
		exprNames[fmt.Sprintf("#f%d", i)] = name

		av, err := attributevalue.Marshal(fields[name])
		if err != nil {
			return nil, fmt.Errorf("marshalling field %q: %w", name, err)
		}
		exprValues[fmt.Sprintf(":v%d", i)] = av
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       r.key(identity),
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(#u)"),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var conditional *types.ConditionalCheckFailedException
		if errors.As(err, &conditional) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: updating profile: %v", common.ErrorDependency, err)
	}

	profile := &models.Profile{}
	if err := attributevalue.UnmarshalMap(out.Attributes, profile); err != nil {
		return nil, fmt.Errorf("unmarshalling profile: %w", err)
	}
	return profile, nil
}
