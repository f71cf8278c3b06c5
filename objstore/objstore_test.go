package objstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	data := []byte("image")
	require.NoError(t, m.Put(ctx, Object{Bucket: "b", Key: "a/x.png", Data: data, ContentType: "image/png"}))
	data[0] = 'X' // caller mutation must not leak in

	obj, err := m.Get(ctx, "b", "a/x.png")
	require.NoError(t, err)
	assert.Equal(t, "image", string(obj.Data))
	assert.Equal(t, "image/png", obj.ContentType)

	_, err = m.Get(ctx, "b", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, m.Put(ctx, Object{Key: "k"}))
	assert.Equal(t, []string{"b/a/x.png"}, m.Keys())
}

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
	lastPut *s3.PutObjectInput
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(data)),
		ContentType: aws.String("image/jpeg"),
	}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.lastPut = in
	data, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3_GetPut(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{"photos/me.jpg": []byte("jpeg")}}
	store := NewS3FromClient(fake)

	obj, err := store.Get(ctx, "photos", "me.jpg")
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(obj.Data))
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, "photos", obj.Bucket)

	require.NoError(t, store.Put(ctx, Object{Bucket: "thumbs", Key: "me.jpg", Data: []byte("small"), ContentType: "image/jpeg"}))
	assert.Equal(t, "small", string(fake.objects["thumbs/me.jpg"]))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.lastPut.ContentType))
}

func TestS3_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("access denied")
	store := NewS3FromClient(&fakeS3{objects: map[string][]byte{}, putErr: boom})

	_, err := store.Get(ctx, "photos", "nope.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Put(ctx, Object{Bucket: "b", Key: "k"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "s3://b/k")
}
