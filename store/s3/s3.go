// Package s3 stores research records as JSON objects in an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/aishitdharwal/ai-agent/config"
	"github.com/aishitdharwal/ai-agent/store"
)

// DefaultPrefix is the key prefix states are written under.
const DefaultPrefix = "states/"

func init() {
	store.Register("s3", func(ctx context.Context, cfg *config.Config) (store.Store, error) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		return New(s3.NewFromConfig(awsCfg), cfg.StateBucket, cfg.StatePrefix)
	})
}

// Client is the subset of the S3 API the store needs.
type Client interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store keeps each record as a JSON object at <prefix><request_id>.json.
type Store struct {
	client Client
	bucket string
	prefix string
}

// New creates a store over an existing client.
func New(client Client, bucket, prefix string) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("STATE_BUCKET not set")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, bucket: bucket, prefix: prefix}, nil
}

// Key returns the object key for requestID.
func (s *Store) Key(requestID string) string {
	return s.prefix + requestID + ".json"
}

// Save puts the record. Concurrent saves for one id are last-writer-wins.
func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	body, err := store.Marshal(rec)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.Key(rec.RequestID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Load fetches the record for requestID.
func (s *Store) Load(ctx context.Context, requestID string) (*store.Record, error) {
	if err := store.ValidateID(requestID); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(requestID)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to get state: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return store.Unmarshal(data)
}

// List pages through the prefix and returns every request id, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	ids := []string{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list states: %w", err)
		}
		for _, obj := range page.Contents {
			key := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if !strings.HasSuffix(key, ".json") || strings.Contains(key, "/") {
				continue
			}
			ids = append(ids, strings.TrimSuffix(key, ".json"))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the object. S3 does not report missing keys on delete.
func (s *Store) Delete(ctx context.Context, requestID string) error {
	if err := store.ValidateID(requestID); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.Key(requestID)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}
