package trigger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/ContentPlannerMCP/internal/models"
	"github.com/Corphon/ContentPlannerMCP/internal/utils"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func newTestTrigger(t *testing.T, url string, n Notifier) *Trigger {
	t.Helper()
	return New(url, WithNotifier(n), WithLogger(utils.NewNopLogger()))
}

func testBrand() models.BrandProfile {
	return models.BrandProfile{Name: "Acme", Tone: "calm", Audience: "families", Keywords: []string{"care"}}
}

func TestGenerate_PostMergesTitleAndCopy(t *testing.T) {
	var received models.GenerationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, GeneratePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Flu Season","copy":"Get your shot."}`))
	}))
	defer server.Close()

	notifier := &recordingNotifier{}
	tr := newTestTrigger(t, server.URL, notifier)

	draft := models.NewDraft(nil)
	draft.Title = "Flu Season"
	draft.Hashtags = []string{"#keep"}

	result, err := tr.Generate(context.Background(), models.KindPost, testBrand(), &draft)
	require.NoError(t, err)

	assert.Equal(t, SourceProxy, result.Source)
	assert.Equal(t, "Flu Season", draft.Title)
	assert.Equal(t, "Get your shot.", draft.Copy)
	assert.Equal(t, []string{"#keep"}, draft.Hashtags)
	assert.Empty(t, notifier.Messages())

	assert.Equal(t, "post", received.Kind)
	assert.Equal(t, "Acme", received.Brand.Name)
	assert.Equal(t, "Flu Season", received.Context.Title)
	assert.Equal(t, models.DefaultDraftPlatforms, received.Context.Platforms)
}

func TestGenerate_HashtagsMerge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hashtags":["#A","#B"]}`))
	}))
	defer server.Close()

	tr := newTestTrigger(t, server.URL, &recordingNotifier{})
	draft := models.NewDraft(nil)
	draft.Copy = "unchanged"

	result, err := tr.Generate(context.Background(), models.KindHashtags, testBrand(), &draft)
	require.NoError(t, err)
	assert.Equal(t, SourceProxy, result.Source)
	assert.Equal(t, []string{"#A", "#B"}, draft.Hashtags)
	assert.Equal(t, "unchanged", draft.Copy)
}

func TestGenerate_ErrorBodyIsMergedAsIs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"upstream_error","detail":"quota"}`))
	}))
	defer server.Close()

	notifier := &recordingNotifier{}
	tr := newTestTrigger(t, server.URL, notifier)

	t.Run("post", func(t *testing.T) {
		draft := models.NewDraft(nil)
		draft.Title = "Old"
		draft.Copy = "Old copy"

		result, err := tr.Generate(context.Background(), models.KindPost, testBrand(), &draft)
		require.NoError(t, err)
		assert.Equal(t, SourceProxy, result.Source)
		require.NotNil(t, result.Response)
		assert.Equal(t, models.GenerationErrorUpstream, result.Response.Error)
		assert.Equal(t, "", draft.Title)
		assert.Equal(t, "", draft.Copy)
	})

	t.Run("hashtags", func(t *testing.T) {
		draft := models.NewDraft(nil)
		draft.Hashtags = []string{"#old"}

		_, err := tr.Generate(context.Background(), models.KindHashtags, testBrand(), &draft)
		require.NoError(t, err)
		assert.NotNil(t, draft.Hashtags)
		assert.Empty(t, draft.Hashtags)
	})

	assert.Empty(t, notifier.Messages())
}

func TestGenerate_NonJSONBodyUsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	notifier := &recordingNotifier{}
	tr := newTestTrigger(t, server.URL, notifier)

	draft := models.NewDraft(nil)
	draft.Title = "Flu Season"

	result, err := tr.Generate(context.Background(), models.KindPost, testBrand(), &draft)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, result.Source)
	assert.Error(t, result.Err)
	assert.Equal(t, "Flu Season", draft.Title)
	assert.Equal(t, "Caring for every heartbeat. At Acme, your wellness is our priority. #Health #Care", draft.Copy)
	assert.Equal(t, []string{FallbackNotice}, notifier.Messages())
}

func TestGenerate_TransportFailureUsesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	notifier := &recordingNotifier{}
	tr := newTestTrigger(t, url, notifier)

	draft := models.NewDraft(nil)
	result, err := tr.Generate(context.Background(), models.KindHashtags, testBrand(), &draft)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, result.Source)
	assert.Equal(t, []string{"#BharatLifeCare", "#Healthcare", "#Wellness", "#Diagnostics", "#PatientCare"}, draft.Hashtags)
	assert.Equal(t, []string{"Generation failed. Using a smart fallback."}, notifier.Messages())
	assert.False(t, tr.InProgress(models.KindHashtags))
}

func TestGenerate_FallbackHashtagsAreCopied(t *testing.T) {
	tr := newTestTrigger(t, "http://127.0.0.1:1", &recordingNotifier{})

	draft := models.NewDraft(nil)
	_, err := tr.Generate(context.Background(), models.KindHashtags, testBrand(), &draft)
	require.NoError(t, err)

	draft.Hashtags[0] = "#mutated"
	assert.Equal(t, "#BharatLifeCare", FallbackHashtags[0])
}

func TestGenerate_SameKindIsRejectedWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.GenerationRequest
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		started <- req.Kind
		<-release
		if req.Kind == "hashtags" {
			_, _ = w.Write([]byte(`{"hashtags":["#X"]}`))
			return
		}
		_, _ = w.Write([]byte(`{"title":"T","copy":"C"}`))
	}))
	defer server.Close()

	tr := newTestTrigger(t, server.URL, &recordingNotifier{})
	draft := models.NewDraft(nil)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, kind := range []models.GenerationKind{models.KindPost, models.KindHashtags} {
		wg.Add(1)
		go func(kind models.GenerationKind) {
			defer wg.Done()
			_, err := tr.Generate(context.Background(), kind, testBrand(), &draft)
			errs <- err
		}(kind)
	}

	// 两类请求都已到达服务端
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for requests")
		}
	}

	assert.True(t, tr.InProgress(models.KindPost))
	assert.True(t, tr.InProgress(models.KindHashtags))

	_, err := tr.Generate(context.Background(), models.KindPost, testBrand(), &draft)
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	assert.Equal(t, "T", draft.Title)
	assert.Equal(t, "C", draft.Copy)
	assert.Equal(t, []string{"#X"}, draft.Hashtags)
	assert.False(t, tr.InProgress(models.KindPost))
}

func TestGenerate_NilDraft(t *testing.T) {
	tr := newTestTrigger(t, "http://localhost", nil)
	_, err := tr.Generate(context.Background(), models.KindPost, testBrand(), nil)
	assert.Error(t, err)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	tr := New("http://localhost:8080/")
	assert.Equal(t, "http://localhost:8080/api/generate", tr.Endpoint())
}
