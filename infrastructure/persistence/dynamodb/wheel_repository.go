package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"axon-backend/application/ports"
	"axon-backend/domain/core/aggregates"
	"axon-backend/domain/core/entities"
	"axon-backend/domain/core/valueobjects"
	"axon-backend/infrastructure/persistence/schema"
	pkgerrors "axon-backend/pkg/errors"
	"axon-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	entityTypeWheel = "WHEEL"
	metadataSK      = "METADATA"
)

// Client is the subset of the DynamoDB API the repository uses
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// WheelRepository stores each wheel as one item in a single table.
//
//	PK      WHEEL#<id>
//	SK      METADATA
//	GSI1PK  OWNER#<ownerId>
//	GSI1SK  zero padded lastModified millis, so the owner index sorts by recency
type WheelRepository struct {
	client    Client
	tableName  string
	indexName  string
	evolution  *schema.Evolution
	logger     *zap.Logger
}

// NewWheelRepository creates a new WheelRepository
func NewWheelRepository(client Client, tableName, indexName string, logger *zap.Logger) ports.WheelRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if indexName == "" {
		indexName = "GSI1"
	}
	return &WheelRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		evolution: schema.WheelItems(),
		logger:    logger,
	}
}

// wheelItem represents the DynamoDB item structure for a wheel
type wheelItem struct {
	PK            string          `dynamodbav:"PK"`
	SK            string          `dynamodbav:"SK"`
	GSI1PK        string          `dynamodbav:"GSI1PK"`
	GSI1SK        string          `dynamodbav:"GSI1SK"`
	EntityType    string          `dynamodbav:"EntityType"`
	WheelID       string          `dynamodbav:"WheelID"`
	OwnerID       string          `dynamodbav:"OwnerID"`
	Title         string          `dynamodbav:"Title"`
	Visibility    string          `dynamodbav:"Visibility"`
	Nodes         []entities.Node `dynamodbav:"Nodes"`
	Edges         []entities.Edge `dynamodbav:"Edges"`
	CreatedAt     int64           `dynamodbav:"CreatedAt"`
	LastModified  int64           `dynamodbav:"LastModified"`
	Version       int             `dynamodbav:"Version"`
	SchemaVersion int             `dynamodbav:"SchemaVersion"`
}

type itemKey struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

func wheelKey(id aggregates.WheelID) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(itemKey{PK: "WHEEL#" + id.String(), SK: metadataSK})
}

func ownerKey(ownerID string) string {
	return "OWNER#" + ownerID
}

// Save writes the wheel if the stored version still matches the one it was
// read at. A lost race is reported as a conflict.
func (r *WheelRepository) Save(ctx context.Context, wheel *aggregates.Wheel) error {
	g := wheel.Graph()
	lastModified := utils.UnixMilli(wheel.LastModified())
	item := wheelItem{
		PK:            "WHEEL#" + wheel.ID().String(),
		SK:            metadataSK,
		GSI1PK:        ownerKey(wheel.OwnerID()),
		GSI1SK:        fmt.Sprintf("%013d", lastModified),
		EntityType:    entityTypeWheel,
		WheelID:       wheel.ID().String(),
		OwnerID:       wheel.OwnerID(),
		Title:         wheel.Title(),
		Visibility:    string(wheel.Visibility()),
		Nodes:         g.Nodes,
		Edges:         g.Edges,
		CreatedAt:     utils.UnixMilli(wheel.CreatedAt()),
		LastModified:  lastModified,
		Version:       wheel.Version(),
		SchemaVersion: r.evolution.CurrentVersion(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal wheel: %w", err)
	}

	var cond expression.ConditionBuilder
	if wheel.PersistedVersion() == 0 {
		cond = expression.AttributeNotExists(expression.Name("PK"))
	} else {
		cond = expression.Name("Version").Equal(expression.Value(wheel.PersistedVersion()))
	}
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			r.logger.Info("Wheel version conflict",
				zap.String("wheelID", wheel.ID().String()),
				zap.Int("expectedVersion", wheel.PersistedVersion()),
			)
			return pkgerrors.NewConflictError("wheel was modified concurrently").WithCode("STALE_VERSION")
		}
		r.logger.Error("Failed to save wheel to DynamoDB",
			zap.Error(err),
			zap.String("wheelID", wheel.ID().String()),
		)
		return pkgerrors.NewDatabaseError("PutItem", err)
	}

	wheel.MarkPersisted()
	r.logger.Debug("Saved wheel to DynamoDB",
		zap.String("wheelID", wheel.ID().String()),
		zap.Int("version", wheel.Version()),
		zap.Int("nodeCount", len(g.Nodes)),
		zap.Int("edgeCount", len(g.Edges)),
	)
	return nil
}

// GetByID retrieves a wheel by its ID
func (r *WheelRepository) GetByID(ctx context.Context, id aggregates.WheelID) (*aggregates.Wheel, error) {
	key, err := wheelKey(id)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("GetItem", err)
	}
	if len(result.Item) == 0 {
		return nil, pkgerrors.NewNotFoundError("Wheel")
	}
	return r.decode(result.Item)
}

// ListByOwner returns every wheel of ownerID, most recently modified first
func (r *WheelRepository) ListByOwner(ctx context.Context, ownerID string) ([]*aggregates.Wheel, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(ownerKey(ownerID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key condition: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	})

	wheels := make([]*aggregates.Wheel, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("Query", err)
		}
		for _, raw := range page.Items {
			w, err := r.decode(raw)
			if err != nil {
				r.logger.Warn("Skipping unreadable wheel item",
					zap.String("ownerID", ownerID),
					zap.Error(err),
				)
				continue
			}
			wheels = append(wheels, w)
		}
	}

	r.logger.Debug("Listed wheels",
		zap.String("ownerID", ownerID),
		zap.Int("count", len(wheels)),
	)
	return wheels, nil
}

// Delete removes a wheel
func (r *WheelRepository) Delete(ctx context.Context, id aggregates.WheelID) error {
	key, err := wheelKey(id)
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      key,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var conditionalCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionalCheckFailed) {
			return pkgerrors.NewNotFoundError("Wheel")
		}
		return pkgerrors.NewDatabaseError("DeleteItem", err)
	}

	r.logger.Info("Deleted wheel", zap.String("wheelID", id.String()))
	return nil
}

func (r *WheelRepository) decode(raw map[string]types.AttributeValue) (*aggregates.Wheel, error) {
	from, err := r.evolution.Upgrade(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade wheel item: %w", err)
	}
	if from != r.evolution.CurrentVersion() {
		r.logger.Debug("Upgraded wheel item", zap.Int("fromSchema", from))
	}

	var item wheelItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wheel: %w", err)
	}

	return aggregates.ReconstructWheel(
		aggregates.WheelID(item.WheelID),
		item.Title,
		item.OwnerID,
		valueobjects.Visibility(item.Visibility),
		aggregates.NewGraph(item.Nodes, item.Edges),
		utils.FromUnixMilli(item.CreatedAt),
		utils.FromUnixMilli(item.LastModified),
		item.Version,
	), nil
}
