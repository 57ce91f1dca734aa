//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/pledgewatch/pledgewatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Client_ArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRustFSContainer(ctx, t)
	defer rc.Terminate(ctx)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "pledgewatch-archive",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))

	key := ArchiveKey("company-1", "doc-1")
	payload := []byte("We pledge zero toxic discharge into waterways.")

	require.NoError(t, client.PutDocument(ctx, key, "text/plain", payload))

	got, err := client.GetDocument(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	url, err := client.GenerateDownloadURL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, url, "pledgewatch-archive")

	require.NoError(t, client.DeleteDocument(ctx, key))
	_, err = client.GetDocument(ctx, key)
	assert.Error(t, err)
}

func TestArchiveKey(t *testing.T) {
	assert.Equal(t, "documents/c1/d1.txt", ArchiveKey("c1", "d1"))
}
