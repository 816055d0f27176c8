package dynamodb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	pkgerrors "axon-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.PutItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.DeleteItemOutput)
	return out, args.Error(1)
}

func (m *mockClient) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}

func newRepo(client Client) *WheelRepository {
	return NewWheelRepository(client, "wheels", "", zap.NewNop()).(*WheelRepository)
}

func sampleWheel(t *testing.T) *aggregates.Wheel {
	t.Helper()
	root := entities.NewNode(valueobjects.RootNodeID, "Remote work", 0, valueobjects.Origin)
	child := entities.NewNode("a", "Less commuting", 1, valueobjects.NewPosition(0, 150))
	child.Data.Votes = map[string]int{"u2": 4}
	child.Data.Probability = 4
	g := aggregates.NewGraph(
		[]entities.Node{root, child},
		[]entities.Edge{entities.NewEdge(valueobjects.RootNodeID, "a", "causes")},
	)
	created := time.UnixMilli(1700000000000)
	return aggregates.ReconstructWheel("w1", "Remote work", "u1", valueobjects.VisibilityPublic,
		g, created, created.Add(time.Minute), 3)
}

func TestWheelRepository_SaveNewWheelRequiresAbsence(t *testing.T) {
	// Arrange
	client := new(mockClient)
	repo := newRepo(client)
	w, err := aggregates.NewWheel("Remote work", "u1", nil)
	require.NoError(t, err)

	client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return aws.ToString(in.TableName) == "wheels" &&
			strings.Contains(aws.ToString(in.ConditionExpression), "attribute_not_exists") &&
			in.Item["PK"].(*types.AttributeValueMemberS).Value == "WHEEL#"+w.ID().String() &&
			in.Item["GSI1PK"].(*types.AttributeValueMemberS).Value == "OWNER#u1"
	})).Return(&dynamodb.PutItemOutput{}, nil)

	// Act
	err = repo.Save(context.Background(), w)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, w.Version(), w.PersistedVersion())
	client.AssertExpectations(t)
}

func TestWheelRepository_SaveExistingChecksVersion(t *testing.T) {
	client := new(mockClient)
	repo := newRepo(client)
	w := sampleWheel(t)
	require.NoError(t, w.SetVisibility("u1", valueobjects.VisibilityPrivate))

	client.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		for _, v := range in.ExpressionAttributeValues {
			if n, ok := v.(*types.AttributeValueMemberN); ok && n.Value == "3" {
				return in.Item["Version"].(*types.AttributeValueMemberN).Value == "4"
			}
		}
		return false
	})).Return(&dynamodb.PutItemOutput{}, nil)

	require.NoError(t, repo.Save(context.Background(), w))
	assert.Equal(t, 4, w.PersistedVersion())
	client.AssertExpectations(t)
}

func TestWheelRepository_SaveConflict(t *testing.T) {
	client := new(mockClient)
	repo := newRepo(client)
	w := sampleWheel(t)

	client.On("PutItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{Message: aws.String("version mismatch")})

	err := repo.Save(context.Background(), w)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, 3, w.PersistedVersion())
}

func TestWheelRepository_SaveFailure(t *testing.T) {
	client := new(mockClient)
	repo := newRepo(client)

	client.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	err := repo.Save(context.Background(), sampleWheel(t))
	require.Error(t, err)
	assert.False(t, pkgerrors.IsConflict(err))
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
	assert.Contains(t, err.Error(), "throttled")
}

func TestWheelRepository_GetByIDRoundTrip(t *testing.T) {
	client := new(mockClient)
	repo := newRepo(client)
	w := sampleWheel(t)

	var stored map[string]types.AttributeValue
	client.On("PutItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*dynamodb.PutItemInput).Item }).
		Return(&dynamodb.PutItemOutput{}, nil)
	require.NoError(t, repo.Save(context.Background(), w))

	client.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return in.Key["PK"].(*types.AttributeValueMemberS).Value == "WHEEL#w1" &&
			aws.ToBool(in.ConsistentRead)
	})).Return(&dynamodb.GetItemOutput{Item: stored}, nil)

	got, err := repo.GetByID(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, w.Title(), got.Title())
	assert.Equal(t, w.OwnerID(), got.OwnerID())
	assert.Equal(t, valueobjects.VisibilityPublic, got.Visibility())
	assert.Equal(t, w.Graph(), got.Graph())
	assert.Equal(t, 3, got.Version())
	assert.Equal(t, 3, got.PersistedVersion())
	assert.True(t, w.LastModified().Equal(got.LastModified()))
}

func TestWheelRepository_GetByIDNotFound(t *testing.T) {
	client := new(mockClient)
	repo := newRepo(client)
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestWheelRepository_GetByIDUpgradesOldItems(t *testing.T) {
	client := new(mockClient)
	repo := newRepo(client)

	legacy, err := attributevalue.MarshalMap(map[string]any{
		"PK":           "WHEEL#old",
		"SK":           "METADATA",
		"WheelID":      "old",
		"OwnerID":      "u1",
		"Name":         "Legacy wheel",
		"Nodes":        []entities.Node{entities.NewNode(valueobjects.RootNodeID, "Legacy wheel", 0, valueobjects.Origin)},
		"LastModified": int64(1700000000000),
		"Version":      2,
	})
	require.NoError(t, err)
	client.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: legacy}, nil)

	got, err := repo.GetByID(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, "Legacy wheel", got.Title())
	assert.Equal(t, valueobjects.VisibilityPrivate, got.Visibility())
	assert.Len(t, got.Graph().Nodes, 1)
}

func TestWheelRepository_ListByOwner(t *testing.T) {
	client := new(mockClient)
	repo := newRepo(client)
	w := sampleWheel(t)

	var stored map[string]types.AttributeValue
	client.On("PutItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*dynamodb.PutItemInput).Item }).
		Return(&dynamodb.PutItemOutput{}, nil)
	require.NoError(t, repo.Save(context.Background(), w))

	broken := map[string]types.AttributeValue{
		"SchemaVersion": &types.AttributeValueMemberS{Value: "not a number"},
	}
	client.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return aws.ToString(in.IndexName) == "GSI1" && !aws.ToBool(in.ScanIndexForward)
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{stored, broken}}, nil)

	list, err := repo.ListByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1, "unreadable items are skipped")
	assert.Equal(t, aggregates.WheelID("w1"), list[0].ID())
}

func TestWheelRepository_Delete(t *testing.T) {
	client := new(mockClient)
	repo := newRepo(client)

	client.On("DeleteItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return in.Key["PK"].(*types.AttributeValueMemberS).Value == "WHEEL#w1"
	})).Return(&dynamodb.DeleteItemOutput{}, nil).Once()
	client.On("DeleteItem", mock.Anything, mock.Anything).
		Return(nil, &types.ConditionalCheckFailedException{}).Once()

	require.NoError(t, repo.Delete(context.Background(), "w1"))
	assert.True(t, pkgerrors.IsNotFound(repo.Delete(context.Background(), "w1")))
}
