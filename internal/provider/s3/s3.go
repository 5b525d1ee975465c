// Package s3 exposes an S3-compatible bucket as a drive: key prefixes become
// folders, objects become files and download URLs are presigned GETs.
package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"github.com/any-index/any-index/internal/drive"
	"github.com/any-index/any-index/internal/provider"
)

const (
	// Type is the Account.Type value for this provider.
	Type = "s3"

	DefaultRegion         = "us-east-1"
	DefaultPresignExpires = time.Hour
)

func init() {
	provider.MustRegister(provider.Metadata{
		Type:        Type,
		Description: "S3-compatible bucket, prefixes as folders",
		New: func(ctx context.Context, opts provider.Options) (provider.StorageProvider, error) {
			return New(ctx, opts)
		},
	})
}

// objectAPI is the subset of *s3.Client used by Bucket.
type objectAPI interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// presignAPI produces time-limited GET URLs.
type presignAPI interface {
	PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}

type presignAdapter struct {
	client *s3.PresignClient
}

func (a presignAdapter) PresignGet(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	req, err := a.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// Bucket implements provider.StorageProvider.
type Bucket struct {
	api     objectAPI
	presign presignAPI
	bucket  string
	expires time.Duration
	logger  *logrus.Logger
}

// New builds a Bucket from account options.
func New(ctx context.Context, opts provider.Options) (*Bucket, error) {
	if opts.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	region := opts.Region
	if region == "" {
		region = DefaultRegion
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if opts.HTTPClient != nil {
		loadOpts = append(loadOpts, awsconfig.WithHTTPClient(opts.HTTPClient))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	expires := opts.PresignExpires
	if expires <= 0 {
		expires = DefaultPresignExpires
	}

	return &Bucket{
		api:     client,
		presign: presignAdapter{s3.NewPresignClient(client)},
		bucket:  opts.Bucket,
		expires: expires,
		logger:  logger,
	}, nil
}

// FetchItem resolves a key to a file, or a prefix to a folder.
func (b *Bucket) FetchItem(ctx context.Context, p string) (drive.Item, error) {
	key := strings.Trim(p, "/")
	if key == "" {
		return drive.Item{ID: "/", Name: b.bucket, IsFolder: true}, nil
	}

	head, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		item := drive.Item{
			ID:           key,
			Name:         path.Base(key),
			Size:         aws.ToInt64(head.ContentLength),
			LastModified: aws.ToTime(head.LastModified),
			MimeType:     aws.ToString(head.ContentType),
		}
		item.DownloadURL, err = b.presignURL(ctx, key)
		if err != nil {
			return drive.Item{}, err
		}
		return item, nil
	}
	if !isNotFound(err) {
		return drive.Item{}, translate(err)
	}

	out, err := b.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		Prefix:  aws.String(key + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return drive.Item{}, translate(err)
	}
	if aws.ToInt32(out.KeyCount) == 0 && len(out.Contents) == 0 {
		return drive.Item{}, &provider.ErrorEnvelope{Code: "itemNotFound", Message: key}
	}
	b.logger.WithFields(logrus.Fields{"action": "s3_fetch_item", "bucket": b.bucket, "prefix": key}).
		Debug("key resolved as folder prefix")
	return drive.Item{ID: key + "/", Name: path.Base(key), IsFolder: true}, nil
}

// FetchList lists one level below the prefix using "/" as delimiter.
func (b *Bucket) FetchList(ctx context.Context, p string) ([]drive.Item, error) {
	prefix := strings.Trim(p, "/")
	if prefix != "" {
		prefix += "/"
	}

	items := make([]drive.Item, 0)
	var token *string
	for {
		out, err := b.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(b.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, translate(err)
		}
		for _, cp := range out.CommonPrefixes {
			key := aws.ToString(cp.Prefix)
			items = append(items, drive.Item{
				ID:       key,
				Name:     path.Base(strings.TrimSuffix(key, "/")),
				IsFolder: true,
			})
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue
			}
			item := drive.Item{
				ID:           key,
				Name:         path.Base(key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			}
			if item.DownloadURL, err = b.presignURL(ctx, key); err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}
	return items, nil
}

func (b *Bucket) presignURL(ctx context.Context, key string) (string, error) {
	u, err := b.presign.PresignGet(ctx, b.bucket, key, b.expires)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u, nil
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey")
}

// translate maps S3 API errors onto the shared error-code table.
func translate(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	code := apiErr.ErrorCode()
	switch code {
	case "AccessDenied", "AllAccessDisabled":
		code = "accessDenied"
	case "NoSuchBucket", "NoSuchKey", "NotFound":
		code = "itemNotFound"
	case "SlowDown", "RequestLimitExceeded":
		code = "activityLimitReached"
	case "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
		code = "unauthenticated"
	case "ServiceUnavailable", "InternalError":
		code = "serviceNotAvailable"
	}
	return &provider.ErrorEnvelope{Code: code, Message: apiErr.ErrorMessage()}
}
