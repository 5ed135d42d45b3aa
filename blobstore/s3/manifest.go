package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrConcurrentCommit is returned when another writer already committed the
// requested manifest version.
var ErrConcurrentCommit = errors.New("s3: manifest version already committed")

// ErrNoManifest is returned when no version has been committed yet.
var ErrNoManifest = errors.New("s3: no committed manifest")

// DynamoDBClient is the subset of the DynamoDB API the manifest store uses.
// *dynamodb.Client satisfies it.
type DynamoDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Manifest names the blob holding a committed snapshot version.
type Manifest struct {
	// Name identifies the array the snapshot belongs to.
	Name string
	// Version is a monotonically increasing commit counter.
	Version uint64
	// Blob is the blobstore name of the snapshot data.
	Blob string
	// CommittedAt is the commit timestamp.
	CommittedAt time.Time
}

// ManifestStore records committed snapshot versions in a DynamoDB table.
//
// The table uses "name" as the partition key and "version" (a number) as the
// sort key. Commits are conditional writes, so exactly one writer wins any
// given version.
type ManifestStore struct {
	client DynamoDBClient
	table  string
}

// NewManifestStore creates a ManifestStore backed by the given table.
func NewManifestStore(client DynamoDBClient, table string) *ManifestStore {
	return &ManifestStore{client: client, table: table}
}

// Commit records a new manifest version. It fails with ErrConcurrentCommit
// if the version already exists.
func (m *ManifestStore) Commit(ctx context.Context, manifest Manifest) error {
	_, err := m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.table),
		Item: map[string]ddbtypes.AttributeValue{
			"name":         &ddbtypes.AttributeValueMemberS{Value: manifest.Name},
			"version":      &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(manifest.Version, 10)},
			"blob":         &ddbtypes.AttributeValueMemberS{Value: manifest.Blob},
			"committed_at": &ddbtypes.AttributeValueMemberS{Value: manifest.CommittedAt.UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(#v)"),
		ExpressionAttributeNames: map[string]string{
			"#v": "version",
		},
	})
	if err != nil {
		var conditional *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &conditional) {
			return ErrConcurrentCommit
		}
		return fmt.Errorf("commit manifest %s@%d: %w", manifest.Name, manifest.Version, err)
	}

	return nil
}

// Latest returns the most recently committed manifest for the given name.
func (m *ManifestStore) Latest(ctx context.Context, name string) (Manifest, error) {
	out, err := m.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(m.table),
		KeyConditionExpression: aws.String("#n = :name"),
		ExpressionAttributeNames: map[string]string{
			"#n": "name",
		},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":name": &ddbtypes.AttributeValueMemberS{Value: name},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return Manifest{}, fmt.Errorf("query latest manifest %s: %w", name, err)
	}
	if len(out.Items) == 0 {
		return Manifest{}, ErrNoManifest
	}

	return manifestFromItem(name, out.Items[0])
}

func manifestFromItem(name string, item map[string]ddbtypes.AttributeValue) (Manifest, error) {
	manifest := Manifest{Name: name}

	versionAttr, ok := item["version"].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return Manifest{}, fmt.Errorf("manifest %s: malformed version attribute", name)
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest %s: parse version: %w", name, err)
	}
	manifest.Version = version

	blobAttr, ok := item["blob"].(*ddbtypes.AttributeValueMemberS)
	if !ok {
		return Manifest{}, fmt.Errorf("manifest %s: malformed blob attribute", name)
	}
	manifest.Blob = blobAttr.Value

	if tsAttr, ok := item["committed_at"].(*ddbtypes.AttributeValueMemberS); ok {
		if ts, err := time.Parse(time.RFC3339Nano, tsAttr.Value); err == nil {
			manifest.CommittedAt = ts
		}
	}

	return manifest, nil
}
