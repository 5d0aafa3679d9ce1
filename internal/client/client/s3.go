package client

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophcheck/internal/netx"
)

// objectGetter is the part of *s3.Client the fetcher uses.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Test seams.
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Fetcher reads the artifact object from an S3-compatible store.
type S3Fetcher struct {
	Bucket  string
	Key     string
	Options S3Options
}

func (f *S3Fetcher) client(ctx context.Context) (objectGetter, error) {
	var loadOpts []func(*config.LoadOptions) error
	if f.Options.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(f.Options.Region))
	}
	if f.Options.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(f.Options.AccessKey, f.Options.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if f.Options.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(f.Options.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (f *S3Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	c, err := f.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.Bucket),
		Key:    aws.String(f.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", f.Bucket, f.Key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, netx.MaxArtifactSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > netx.MaxArtifactSize {
		return nil, fmt.Errorf("s3://%s/%s: artifact larger than %d bytes", f.Bucket, f.Key, netx.MaxArtifactSize)
	}
	return body, nil
}
