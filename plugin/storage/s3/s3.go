// Package s3 implements the object store on any S3-compatible service.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/mugiwara-labs/receiptsense/internal/profile"
)

type Client struct {
	client    *awss3.Client
	bucket    string
	publicURL string
}

// NewClient creates an S3 client from the profile. When S3Endpoint is set the
// client talks to a custom endpoint (MinIO etc.) with path-style addressing.
func NewClient(ctx context.Context, p *profile.Profile) (*Client, error) {
	if p.S3Bucket == "" {
		return nil, errors.New("S3 bucket is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(p.S3Region),
	}
	if p.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.S3AccessKey, p.S3SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	client := awss3.NewFromConfig(cfg, func(o *awss3.Options) {
		if p.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(p.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := p.S3PublicURL
	if publicURL == "" {
		if p.S3Endpoint != "" {
			publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(p.S3Endpoint, "/"), p.S3Bucket)
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", p.S3Bucket, p.S3Region)
		}
	}

	return &Client{
		client:    client,
		bucket:    p.S3Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Put uploads the blob under key and returns its public URL.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to put object %s", key)
	}
	return fmt.Sprintf("%s/%s", c.publicURL, key), nil
}
