// internal/storage/blob/s3_test.go
package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string]string
	gets    []string
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.gets = append(f.gets, key)
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.objects[key]))}, nil
}

func (f *fakeObjects) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func TestS3Bucket_ImplementsBucket(t *testing.T) {
	var _ Bucket = (*S3Bucket)(nil)
}

func TestS3Bucket_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "a.yaml", "a.yaml"},
		{"holdings", "a.yaml", "holdings/a.yaml"},
		{"holdings/", "a.yaml", "holdings/a.yaml"},
	}

	for _, tt := range tests {
		s := &S3Bucket{prefix: strings.TrimSuffix(tt.prefix, "/")}
		assert.Equal(t, tt.want, s.key(tt.path), "prefix %q", tt.prefix)
	}
}

func TestNewS3_RequiresBucket(t *testing.T) {
	_, err := NewS3(S3Config{Region: "us-east-1"})
	assert.Error(t, err)

	b, err := NewS3(S3Config{Bucket: "filings", Region: "us-east-1", Endpoint: "http://localhost:9000"})
	require.NoError(t, err)
	assert.Equal(t, "filings", b.bucket)
}

func TestS3Bucket_ListAndRead(t *testing.T) {
	fake := &fakeObjects{objects: map[string]string{
		"holdings/investors/b.json":   `{"slug":"b"}`,
		"holdings/investors/a.yaml":   "slug: a",
		"holdings/investors/":         "",
		"holdings/sectors/table.yaml": "",
	}}
	b := &S3Bucket{client: fake, bucket: "filings", prefix: "holdings"}

	paths, err := b.List(context.Background(), "investors")
	require.NoError(t, err)
	assert.Equal(t, []string{"investors/a.yaml", "investors/b.json"}, paths)

	data, err := b.Read(context.Background(), "investors/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "slug: a", string(data))
	assert.Equal(t, []string{"holdings/investors/a.yaml"}, fake.gets)
}
