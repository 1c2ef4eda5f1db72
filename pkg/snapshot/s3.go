package snapshot

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vango-dev/vtree/internal/errors"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Store keeps one object per snapshot under a key prefix.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "eu-west-1", Credentials: creds})
//	store := snapshot.NewS3Store(client, "my-bucket", "snapshots/", snapshot.FormatJSON)
type S3Store struct {
	client S3API
	bucket string
	prefix string
	format Format
}

var _ Store = (*S3Store)(nil)

// NewS3Store creates an S3 snapshot store.
func NewS3Store(client S3API, bucket, prefix string, format Format) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		format: format,
	}
}

func (s *S3Store) key(name string) string {
	return s.prefix + name + s.format.Ext()
}

// Save uploads the snapshot.
func (s *S3Store) Save(ctx context.Context, snap *Snapshot) error {
	if err := ValidateName(snap.Name); err != nil {
		return err
	}
	data, err := snap.Encode(s.format)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(snap.Name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(s.format.ContentType()),
		Metadata: map[string]string{
			"snapshot-taken": snap.Taken.Format(time.RFC3339),
		},
	})
	if err != nil {
		return errors.New(errors.SnapshotStorage).
			WithDetailf("PutObject s3://%s/%s failed.", s.bucket, s.key(snap.Name)).
			Wrap(err)
	}
	return nil
}

// Load downloads and decodes the named snapshot.
func (s *S3Store) Load(ctx context.Context, name string) (*Snapshot, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if stderrors.As(err, &nsk) {
			return nil, notFound(name)
		}
		return nil, errors.New(errors.SnapshotStorage).Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New(errors.SnapshotStorage).Wrap(err)
	}
	return Decode(data, s.format)
}

// List pages through the prefix and returns the snapshot names found.
func (s *S3Store) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.New(errors.SnapshotStorage).Wrap(err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name, ok := strings.CutSuffix(strings.TrimPrefix(key, s.prefix), s.format.Ext())
			if !ok || name == "" || strings.Contains(name, "/") {
				continue
			}
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// NewS3Client builds a client from static settings. Credentials come from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN. A custom
// endpoint switches to path-style addressing, as S3-compatible servers
// expect.
func NewS3Client(region, endpoint string, getenv func(string) string) *s3.Client {
	creds := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		id, secret := getenv("AWS_ACCESS_KEY_ID"), getenv("AWS_SECRET_ACCESS_KEY")
		if id == "" || secret == "" {
			return aws.Credentials{}, stderrors.New("snapshot: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    getenv("AWS_SESSION_TOKEN"),
			Source:          "Environment",
		}, nil
	})

	opts := s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(creds),
	}
	if opts.Region == "" {
		opts.Region = getenv("AWS_REGION")
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}
