package assets_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"archive-sync/core/storage/mocks"
	"archive-sync/feature/assets"
	"archive-sync/feature/character/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func objectChannel(keys ...string) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		ch <- minio.ObjectInfo{Key: key}
	}
	close(ch)
	return ch
}

func TestMirrorRun(t *testing.T) {
	// Upstream has icons and portraits but no collection art.
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/collection/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/webp")
		_, _ = w.Write([]byte("RIFFwebpdata"))
	}))
	defer upstream.Close()

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "archive").Return(true, nil)
	// The portrait is already mirrored; only one listing round-trip happens.
	client.On("ListObjects", mock.Anything, "archive", mock.Anything).
		Return(objectChannel(assets.ObjectPrefix + "/portraits/10000.webp")).Once()
	client.On("PutObject", mock.Anything, "archive", assets.ObjectPrefix+"/icons/10000.webp",
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil).Once()

	m := assets.NewMirror(client, "archive", zap.NewNop(), upstream.URL+"/%s/%d.webp")
	report, err := m.Run(context.Background(), []models.Character{{ID: 10000, Name: "Aru"}})
	assert.NoError(t, err)

	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0], "collection")

	client.AssertExpectations(t)
}

func TestMirrorFallbackUpstream(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("RIFFwebpdata"))
	}))
	defer secondary.Close()

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "archive").Return(true, nil)
	client.On("ListObjects", mock.Anything, "archive", mock.Anything).Return(objectChannel())
	client.On("PutObject", mock.Anything, "archive", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil).Times(3)

	m := assets.NewMirror(client, "archive", zap.NewNop(),
		primary.URL+"/%s/%d.webp", secondary.URL+"/%s/%d.webp")
	report, err := m.Run(context.Background(), []models.Character{{ID: 10015, Name: "Mutsuki"}})
	assert.NoError(t, err)

	assert.Equal(t, 3, report.Stored)
	assert.Zero(t, report.Failed)
	client.AssertExpectations(t)
}

func TestMirrorCancelledKeepsPartialReport(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("RIFFwebpdata"))
	}))
	defer upstream.Close()

	ctx, cancel := context.WithCancel(context.Background())

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "archive").Return(true, nil)
	client.On("ListObjects", mock.Anything, "archive", mock.Anything).Return(objectChannel())
	// Cancel after the first object lands; the pacing wait picks it up.
	client.On("PutObject", mock.Anything, "archive", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { cancel() }).
		Return(minio.UploadInfo{}, nil).Once()

	m := assets.NewMirror(client, "archive", zap.NewNop(), upstream.URL+"/%s/%d.webp")
	report, err := m.Run(ctx, []models.Character{{ID: 10000, Name: "Aru"}})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 1, report.Attempted)
	client.AssertExpectations(t)
}

func TestMirrorCreatesBucket(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "archive").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "archive", mock.Anything).Return(nil)
	client.On("ListObjects", mock.Anything, "archive", mock.Anything).Return(objectChannel())

	m := assets.NewMirror(client, "archive", zap.NewNop())
	report, err := m.Run(context.Background(), nil)
	assert.NoError(t, err)
	assert.Zero(t, report.Attempted)
	client.AssertExpectations(t)
}
