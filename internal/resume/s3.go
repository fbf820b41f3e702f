package resume

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/config"
)

// S3Backend uploads resumes to an S3-compatible bucket as public objects.
type S3Backend struct {
	client    s3iface.S3API
	bucket    string
	prefix    string
	publicURL string
}

// NewS3Backend configures the client from cfg. Static credentials are used
// when given, otherwise the SDK's default chain (env, shared config, role).
func NewS3Backend(cfg config.S3) (*S3Backend, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, apperr.New("s3 bucket and region are required")
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, apperr.Wrap(err, "create s3 session")
	}
	return newS3Backend(s3.New(sess), cfg), nil
}

func newS3Backend(client s3iface.S3API, cfg config.S3) *S3Backend {
	return &S3Backend{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		publicURL: objectBaseURL(cfg),
	}
}

// objectBaseURL is where objects are readable: the configured public (CDN)
// URL, else the bucket's own host.
func objectBaseURL(cfg config.S3) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	if cfg.Endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	if cfg.ForcePathStyle {
		return endpoint + "/" + cfg.Bucket
	}
	scheme, host, _ := strings.Cut(endpoint, "://")
	return scheme + "://" + cfg.Bucket + "." + host
}

func (b *S3Backend) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := path.Join(b.prefix, name)
	_, err := b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return "", apperr.Wrapf(err, "upload resume to s3://%s/%s", b.bucket, key)
	}
	return b.publicURL + "/" + key, nil
}
