// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage archives raw uploaded content documents in S3-compatible
// object storage. It wraps the AWS SDK v2 with path-style addressing so it
// works against CEPH, MinIO and Hetzner as well as AWS.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// objectAPI is the subset of *s3.Client the archive needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Archive stores source documents in a single bucket.
type Archive struct {
	s3        objectAPI
	presigner *s3.PresignClient
	bucket    string
}

// New creates an archive client. Returns (nil, nil) if endpoint or
// credentials are empty, allowing the app to start without storage.
func New(endpoint, region, accessKey, secretKey, bucket string) (*Archive, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(strings.TrimRight(endpoint, "/")),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Archive{
		s3:        client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}, nil
}

// SourceKey builds the object key for one uploaded document.
func SourceKey(projectID, pageID, uploadID uuid.UUID, contentType string) string {
	return fmt.Sprintf("sources/%s/%s/%s%s", projectID, pageID, uploadID, extension(contentType))
}

func extension(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	switch mt {
	case "text/html":
		return ".html"
	case "text/markdown", "text/x-markdown":
		return ".md"
	case "application/json":
		return ".json"
	}
	return ".bin"
}

// Put stores a source document under a fresh key and returns the key.
func (a *Archive) Put(ctx context.Context, projectID, pageID uuid.UUID, contentType string, body []byte) (string, error) {
	key := SourceKey(projectID, pageID, uuid.New(), contentType)
	_, err := a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}

// Get retrieves an archived document.
func (a *Archive) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := a.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download %s/%s: %w", a.bucket, key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body %s/%s: %w", a.bucket, key, err)
	}
	return data, nil
}

// Delete removes an archived document.
func (a *Archive) Delete(ctx context.Context, key string) error {
	_, err := a.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", a.bucket, key, err)
	}
	return nil
}

// PresignedURL returns a time-limited GET URL for an archived document.
func (a *Archive) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if a.presigner == nil {
		return "", fmt.Errorf("s3 presign %s: no presigner configured", key)
	}
	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("s3 presign %s/%s: %w", a.bucket, key, err)
	}
	return req.URL, nil
}

// Bucket returns the archive bucket name.
func (a *Archive) Bucket() string { return a.bucket }
