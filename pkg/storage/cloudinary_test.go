package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillhub/evidence-api/pkg/config"
	appErrors "github.com/skillhub/evidence-api/pkg/errors"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v12345/abc123.jpg": "abc123",
		"https://res.cloudinary.com/demo/image/upload/abc123":            "abc123",
		"http://localhost:9000/photos/f0e1d2.jpeg?X-Amz-Expires=300":     "f0e1d2",
		"/uploads/session-1.jpg":                                         "session-1",
	}
	for raw, want := range cases {
		require.Equal(t, want, PublicIDFromURL(raw), raw)
	}
}

func TestCloudinaryDestroySignature(t *testing.T) {
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"public_id": r.PostFormValue("public_id"),
			"timestamp": r.PostFormValue("timestamp"),
			"api_key":   r.PostFormValue("api_key"),
			"signature": r.PostFormValue("signature"),
		}
		fmt.Fprint(w, `{"result":"ok"}`)
	}))
	defer server.Close()

	store := NewCloudinaryStore(config.StorageConfig{
		CloudName: "demo",
		APIKey:    "key",
		APISecret: "secret",
	}, server.Client())
	store.baseURL = server.URL
	fixed := time.Unix(1700000000, 0)
	store.now = func() time.Time { return fixed }

	err := store.DeleteByURL(context.Background(), "https://res.cloudinary.com/demo/image/upload/v1/pic42.jpg")
	require.NoError(t, err)

	require.Equal(t, "pic42", gotForm["public_id"])
	require.Equal(t, "1700000000", gotForm["timestamp"])
	require.Equal(t, "key", gotForm["api_key"])

	sum := sha1.Sum([]byte("public_id=pic42&timestamp=1700000000secret"))
	require.Equal(t, hex.EncodeToString(sum[:]), gotForm["signature"])
}

func TestCloudinaryDestroyTreatsNotFoundAsGone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":"not found"}`)
	}))
	defer server.Close()

	store := NewCloudinaryStore(config.StorageConfig{CloudName: "demo", APIKey: "key", APISecret: "secret"}, server.Client())
	store.baseURL = server.URL

	require.NoError(t, store.DeleteByURL(context.Background(), "https://res.cloudinary.com/demo/image/upload/gone.jpg"))
}

func TestCloudinaryReadyRequiresCredentials(t *testing.T) {
	store := NewCloudinaryStore(config.StorageConfig{CloudName: "demo"}, nil)
	err := store.Ready()
	require.ErrorIs(t, err, appErrors.ErrStorageUnavailable)
}

func TestCloudinaryUploadReturnsSecureURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		require.Equal(t, "preset-1", r.PostFormValue("upload_preset"))
		fmt.Fprint(w, `{"secure_url":"https://res.cloudinary.com/demo/image/upload/v9/out.jpg"}`)
	}))
	defer server.Close()

	store := NewCloudinaryStore(config.StorageConfig{CloudName: "demo", UploadPreset: "preset-1"}, server.Client())
	store.baseURL = server.URL

	url, err := store.Upload(context.Background(), "frame.jpg", []byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.com/demo/image/upload/v9/out.jpg", url)
}
