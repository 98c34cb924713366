package repository

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_GetMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get("stores")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestFileStore_PutGet(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put("prices", []byte(`{"A":"1.00"}`)))
	require.NoError(t, s.Put("prices", []byte(`{"A":"2.00"}`)))

	data, err := s.Get("prices")
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":"2.00"}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "prices.json", entries[0].Name())
}

func TestFileStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	_, err := NewFileStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get("users")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	buf := []byte(`{}`)
	require.NoError(t, s.Put("users", buf))
	buf[0] = 'x'

	data, err := s.Get("users")
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data), "store must keep its own copy")

	s.FailWrites = errors.New("disk full")
	assert.Error(t, s.Put("users", []byte(`{}`)))
}

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
}

func (f *fakeS3) GetObject(in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "missing", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{objects: make(map[string][]byte)}
	s := NewS3Store(fake, "bucket", "ledger/")

	_, err := s.Get("stores")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, s.Put("stores", []byte(`{"AMPANG":[]}`)))
	assert.Contains(t, fake.objects, "bucket/ledger/stores.json")

	data, err := s.Get("stores")
	require.NoError(t, err)
	assert.JSONEq(t, `{"AMPANG":[]}`, string(data))
}
