package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/brocante/brocante-api/internal/model"
)

// S3Config holds the settings for an S3 or S3-compatible (MinIO) bucket.
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

// s3API is the subset of *s3.Client used by S3Uploader.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Client builds an S3 client. Static credentials and a custom endpoint are
// used when configured, otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Uploader stores files as objects in a single bucket.
type S3Uploader struct {
	client    s3API
	bucket    string
	publicURL string
}

// NewS3Uploader creates an S3Uploader. publicURL, when set, is the base URL
// objects are served from (a CDN or the MinIO endpoint).
func NewS3Uploader(client s3API, bucket, publicURL string) *S3Uploader {
	return &S3Uploader{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Upload stores f under folder with a generated name.
func (u *S3Uploader) Upload(ctx context.Context, f File, folder string) (model.Asset, error) {
	ct := f.contentType()
	ext := f.extension(ct)
	key := path.Join(folder, uuid.NewString()+ext)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(f.Data),
		ContentLength: aws.Int64(int64(len(f.Data))),
		ContentType:   aws.String(ct),
	})
	if err != nil {
		return model.Asset{}, fmt.Errorf("uploading %s: %w", key, err)
	}

	slog.Debug("media uploaded", "bucket", u.bucket, "key", key, "bytes", len(f.Data))

	return model.Asset{
		PublicID:    key,
		Folder:      folder,
		URL:         u.objectURL(key),
		Format:      strings.TrimPrefix(ext, "."),
		ContentType: ct,
		Bytes:       int64(len(f.Data)),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// DeleteByPrefix removes every object stored under the prefix folder.
func (u *S3Uploader) DeleteByPrefix(ctx context.Context, prefix string) error {
	p := s3.NewListObjectsV2Paginator(u.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(u.bucket),
		Prefix: aws.String(folderKey(prefix)),
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("listing %s: %w", prefix, err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		ids := make([]types.ObjectIdentifier, len(page.Contents))
		for i, obj := range page.Contents {
			ids[i] = types.ObjectIdentifier{Key: obj.Key}
		}

		out, err := u.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(u.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return fmt.Errorf("deleting objects under %s: %w", prefix, err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return fmt.Errorf("deleting %s: %s", aws.ToString(e.Key), aws.ToString(e.Message))
		}
	}

	return nil
}

// DeleteFolder removes the folder marker object. Buckets have no real
// directories, so this succeeds when no marker exists.
func (u *S3Uploader) DeleteFolder(ctx context.Context, prefix string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(folderKey(prefix)),
	})
	if err != nil {
		return fmt.Errorf("deleting folder %s: %w", prefix, err)
	}
	return nil
}

func (u *S3Uploader) objectURL(key string) string {
	if u.publicURL != "" {
		return u.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.bucket, key)
}

func folderKey(prefix string) string {
	return strings.TrimSuffix(prefix, "/") + "/"
}
