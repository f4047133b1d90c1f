package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/tomasbasham/s3up/internal/config"
)

func newTestGCSUploader(t *testing.T, fake *fakeObjectStore) *GCSUploader {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	u, err := NewGCSUploader(context.Background(), &config.Config{},
		option.WithEndpoint(srv.URL+"/storage/v1/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return u
}

func TestGCSUploader_Upload(t *testing.T) {
	tests := []struct {
		name         string
		req          *UploadRequest
		wantLocation string
	}{
		{
			name: "object with upload id",
			req: &UploadRequest{
				ID:          "abc",
				Bucket:      "bkt",
				ObjectName:  "folder/1_file.txt",
				Content:     strings.NewReader("hello"),
				ContentType: "text/plain; charset=utf-8",
				Size:        5,
			},
			wantLocation: "https://storage.googleapis.com/bkt/folder/1_file.txt",
		},
		{
			name: "key is escaped in location",
			req: &UploadRequest{
				Bucket:     "bkt",
				ObjectName: "folder/1 file.txt",
				Content:    strings.NewReader("hello"),
				Size:       5,
			},
			wantLocation: "https://storage.googleapis.com/bkt/folder/1%20file.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeObjectStore{
				status:      http.StatusOK,
				contentType: "application/json",
				body:        `{"bucket":"bkt","name":"` + tt.req.ObjectName + `"}`,
			}
			u := newTestGCSUploader(t, fake)

			result, err := u.Upload(context.Background(), tt.req)
			require.NoError(t, err)

			requests := fake.recorded()
			require.Len(t, requests, 1)
			got := requests[0]

			assert.Equal(t, http.MethodPost, got.Method)
			assert.True(t, strings.HasSuffix(got.Path, "/b/bkt/o"), "unexpected path %q", got.Path)

			query, err := url.ParseQuery(got.Query)
			require.NoError(t, err)
			assert.Equal(t, "multipart", query.Get("uploadType"))

			assert.Contains(t, got.Body, "hello")
			if tt.req.ID != "" {
				assert.Contains(t, got.Body, `"upload-id":"abc"`)
			} else {
				assert.NotContains(t, got.Body, "upload-id")
			}

			assert.Equal(t, tt.req.ObjectName, result.ObjectName)
			assert.Equal(t, tt.wantLocation, result.Location)
		})
	}
}

func TestGCSUploader_UploadError(t *testing.T) {
	fake := &fakeObjectStore{
		status:      http.StatusForbidden,
		contentType: "application/json",
		body:        `{"error":{"code":403,"message":"caller does not have storage.objects.create access"}}`,
	}
	u := newTestGCSUploader(t, fake)

	result, err := u.Upload(context.Background(), &UploadRequest{
		Bucket:     "bkt",
		ObjectName: "folder/1_file.txt",
		Content:    strings.NewReader("hello"),
		Size:       5,
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "storage: upload")
	assert.Len(t, fake.recorded(), 1)
}
