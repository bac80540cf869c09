package scoring

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(url string) *Client {
	return &Client{BaseURL: url, Token: "secret", Timeout: 2 * time.Second, Log: logrus.NewEntry(logrus.New())}
}

func TestClient_SendSubmission(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submission/text", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Confidence":87.6,"Rotation":0.4,"SquadScore":92.2,"Transcription":"once upon a time"}`))
	}))
	defer srv.Close()

	res, err := newClient(srv.URL).SendSubmission(context.Background(), []Page{{Etag: "E1", BlobLabel: "u1/p.jpg"}}, 7)
	require.NoError(t, err)

	assert.Equal(t, 87.6, res.Confidence)
	assert.Equal(t, 0.4, res.Rotation)
	assert.Equal(t, 92.2, res.SquadScore)
	assert.Equal(t, "once upon a time", res.Transcription)
	assert.JSONEq(t, `{"Confidence":87.6,"Rotation":0.4,"SquadScore":92.2,"Transcription":"once upon a time"}`, string(res.Raw))

	assert.Equal(t, "secret", gotAuth)
	assert.EqualValues(t, 7, gotBody["StoryId"])
	pages := gotBody["Pages"].(map[string]any)
	assert.Equal(t, map[string]any{"URL": "u1/p.jpg", "Checksum": "E1"}, pages["1"])
}

func TestClient_Errors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model offline", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newClient(srv.URL).SendSubmission(context.Background(), []Page{{Etag: "E"}}, 1)
		assert.ErrorContains(t, err, "502")
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		_, err := newClient(srv.URL).SendSubmission(context.Background(), []Page{{Etag: "E"}}, 1)
		assert.ErrorContains(t, err, "decode")
	})

	t.Run("no pages", func(t *testing.T) {
		_, err := newClient("http://unused").SendSubmission(context.Background(), nil, 1)
		assert.ErrorIs(t, err, ErrNoPages)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newClient("http://unused").SendSubmission(ctx, []Page{{Etag: "E"}}, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
