// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(in.Body)
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = data
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestNewWithoutCredentials(t *testing.T) {
	a, err := New("", "eu", "", "", "sources")
	if a != nil || err != nil {
		t.Errorf("expected (nil, nil), got %v, %v", a, err)
	}
	if _, err := New("https://s3.example.com", "eu", "ak", "sk", ""); err == nil {
		t.Error("expected error for missing bucket")
	}
}

func TestSourceKey(t *testing.T) {
	p := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	g := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	u := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	tests := []struct {
		ct   string
		want string
	}{
		{"text/html; charset=utf-8", ".html"},
		{"text/markdown", ".md"},
		{"application/json", ".json"},
		{"garbage;;", ".bin"},
	}
	for _, tt := range tests {
		key := SourceKey(p, g, u, tt.ct)
		if !strings.HasPrefix(key, "sources/"+p.String()+"/"+g.String()+"/"+u.String()) || !strings.HasSuffix(key, tt.want) {
			t.Errorf("SourceKey(%q) = %q", tt.ct, key)
		}
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	fake := newFakeS3()
	a := &Archive{s3: fake, bucket: "sources"}
	ctx := context.Background()

	key, err := a.Put(ctx, uuid.New(), uuid.New(), "text/html", []byte("<p>hi</p>"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if fake.types["sources/"+key] != "text/html" {
		t.Errorf("content type not stored: %v", fake.types)
	}

	got, err := a.Get(ctx, key)
	if err != nil || string(got) != "<p>hi</p>" {
		t.Fatalf("Get: %q, %v", got, err)
	}

	if err := a.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := a.Get(ctx, key); err == nil {
		t.Error("expected error after delete")
	}
}

func TestArchivePutError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("access denied")
	a := &Archive{s3: fake, bucket: "sources"}

	if _, err := a.Put(context.Background(), uuid.New(), uuid.New(), "text/html", nil); err == nil {
		t.Error("expected error")
	}
}

func TestPresignedURL(t *testing.T) {
	a, err := New("https://s3.example.com/", "eu-central", "ak", "sk", "sources")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	u, err := a.PresignedURL(context.Background(), "sources/a/b/v1.html", 15*time.Minute)
	if err != nil {
		t.Fatalf("PresignedURL: %v", err)
	}
	if !strings.HasPrefix(u, "https://s3.example.com/sources/sources/a/b/v1.html?") {
		t.Errorf("unexpected url %q", u)
	}
	if !strings.Contains(u, "X-Amz-Signature=") {
		t.Errorf("url not signed: %q", u)
	}
}
