package leads

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	putInputs    []*dynamodb.PutItemInput
	putErr       error
	deleteInputs []*dynamodb.DeleteItemInput
	deleteErr    error
}

func (m *mockDynamo) PutItem(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInputs = append(m.putInputs, input)
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) DeleteItem(_ context.Context, input *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.deleteInputs = append(m.deleteInputs, input)
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoGuard_ClaimWritesConditionalItem(t *testing.T) {
	mock := &mockDynamo{}
	g := NewDynamoGuard(mock, "lead_claims", 2*time.Minute)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	lead := Lead{Name: "Jane", Email: "jane@example.com"}
	ok, err := g.Claim(context.Background(), lead)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, mock.putInputs, 1)
	in := mock.putInputs[0]
	assert.Equal(t, "lead_claims", aws.ToString(in.TableName))
	assert.Equal(t, "attribute_not_exists(fingerprint) OR expiresAt < :now", aws.ToString(in.ConditionExpression))
	assert.Equal(t, &types.AttributeValueMemberN{Value: fmt.Sprint(fixed.Unix())}, in.ExpressionAttributeValues[":now"])

	var stored claimRecord
	require.NoError(t, attributevalue.UnmarshalMap(in.Item, &stored))
	assert.Equal(t, Fingerprint(lead), stored.Fingerprint)
	assert.Equal(t, fixed.Add(2*time.Minute).Unix(), stored.ExpiresAt)
}

func TestDynamoGuard_ConditionFailureIsDuplicate(t *testing.T) {
	mock := &mockDynamo{putErr: fmt.Errorf("put: %w", &types.ConditionalCheckFailedException{Message: aws.String("exists")})}
	g := NewDynamoGuard(mock, "lead_claims", time.Minute)

	ok, err := g.Claim(context.Background(), Lead{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDynamoGuard_OtherErrorsSurface(t *testing.T) {
	mock := &mockDynamo{putErr: errors.New("throttled"), deleteErr: errors.New("throttled")}
	g := NewDynamoGuard(mock, "lead_claims", time.Minute)
	lead := Lead{Name: "Jane", Email: "jane@example.com"}

	_, err := g.Claim(context.Background(), lead)
	assert.ErrorContains(t, err, "leads: claim submission")
	assert.ErrorContains(t, g.Release(context.Background(), lead), "leads: release submission")
}

func TestDynamoGuard_ReleaseDeletesByFingerprint(t *testing.T) {
	mock := &mockDynamo{}
	g := NewDynamoGuard(mock, "lead_claims", time.Minute)
	lead := Lead{Name: "Jane", Email: "jane@example.com"}

	require.NoError(t, g.Release(context.Background(), lead))
	require.Len(t, mock.deleteInputs, 1)
	assert.Equal(t, &types.AttributeValueMemberS{Value: Fingerprint(lead)}, mock.deleteInputs[0].Key["fingerprint"])
}

func TestDynamoGuard_DisabledWindow(t *testing.T) {
	mock := &mockDynamo{}
	ok, err := NewDynamoGuard(mock, "lead_claims", 0).Claim(context.Background(), Lead{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, mock.putInputs)
}

func TestNewDynamoGuardPanicsWithoutTable(t *testing.T) {
	assert.Panics(t, func() { NewDynamoGuard(&mockDynamo{}, "", time.Minute) })
}
