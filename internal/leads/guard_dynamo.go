package leads

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// claimRecord is the DynamoDB item held while a submission is in its window.
// The table's TTL attribute must be expiresAt.
type claimRecord struct {
	Fingerprint string `dynamodbav:"fingerprint"`
	ClaimedAt   string `dynamodbav:"claimedAt"`
	ExpiresAt   int64  `dynamodbav:"expiresAt"`
}

// DynamoGuard is a Guard for deployments without Redis, such as Lambda.
// DynamoDB deletes expired items lazily, so the claim condition also
// accepts items whose expiresAt has passed.
type DynamoGuard struct {
	client    dynamoAPI
	tableName string
	window    time.Duration
	now       func() time.Time
}

// NewDynamoGuard builds a guard over tableName, keyed by "fingerprint".
func NewDynamoGuard(client dynamoAPI, tableName string, window time.Duration) *DynamoGuard {
	if client == nil {
		panic("leads: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("leads: table name cannot be empty")
	}
	return &DynamoGuard{client: client, tableName: tableName, window: window, now: time.Now}
}

func (g *DynamoGuard) Claim(ctx context.Context, lead Lead) (bool, error) {
	if g.window <= 0 {
		return true, nil
	}
	now := g.now().UTC()
	item, err := attributevalue.MarshalMap(claimRecord{
		Fingerprint: Fingerprint(lead),
		ClaimedAt:   now.Format(time.RFC3339),
		ExpiresAt:   now.Add(g.window).Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("leads: marshal claim: %w", err)
	}

	_, err = g.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(g.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(fingerprint) OR expiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return false, nil
		}
		return false, fmt.Errorf("leads: claim submission: %w", err)
	}
	return true, nil
}

func (g *DynamoGuard) Release(ctx context.Context, lead Lead) error {
	_, err := g.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(g.tableName),
		Key: map[string]types.AttributeValue{
			"fingerprint": &types.AttributeValueMemberS{Value: Fingerprint(lead)},
		},
	})
	if err != nil {
		return fmt.Errorf("leads: release submission: %w", err)
	}
	return nil
}

var _ Guard = (*DynamoGuard)(nil)
