package places_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UnknownOlympus/locus/internal/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "google-maps-secret-key"

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	calls  atomic.Int32
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.calls.Add(1)
	return m.doFunc(req)
}

type recordedLookup struct {
	backend string
	resp    places.Response
	err     error
}

type fakeObserver struct {
	mu      sync.Mutex
	lookups []recordedLookup
}

func (o *fakeObserver) ObserveLookup(backend string, _ time.Duration, resp places.Response, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups = append(o.lookups, recordedLookup{backend: backend, resp: resp, err: err})
}

// newFixtureServer serves testdata/<place_id>.json for requests carrying the expected key.
func newFixtureServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodGet || r.URL.Path != places.DetailsPath {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("key") != testAPIKey {
			http.Error(w, "unexpected key", http.StatusBadRequest)
			return
		}

		writeFixture(w, r, r.URL.Query().Get("place_id"))
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func TestClient_GetMapPlace(t *testing.T) {
	srv, _ := newFixtureServer(t)
	client := places.NewClient(testAPIKey, places.WithBaseURL(srv.URL+"/"))
	ctx := t.Context()

	t.Run("valid place", func(t *testing.T) {
		resp, err := client.GetMapPlace(ctx, "place-001")

		require.NoError(t, err)
		ok, isOK := resp.(places.OK)
		require.True(t, isOK, "expected OK, got %T", resp)
		assert.Len(t, ok.Result.AddressComponents, 7)
		code, found := ok.Result.CountryCode()
		assert.True(t, found)
		assert.Equal(t, "MY", code)
	})

	t.Run("invalid place", func(t *testing.T) {
		resp, err := client.GetMapPlace(ctx, "place-invalid")

		require.NoError(t, err)
		assert.Equal(t, places.InvalidRequest{}, resp)
	})

	t.Run("denied", func(t *testing.T) {
		resp, err := client.GetMapPlace(ctx, "place-denied")

		require.NoError(t, err)
		denied, isDenied := resp.(places.RequestDenied)
		require.True(t, isDenied, "expected RequestDenied, got %T", resp)
		assert.Equal(t, "The provided API key is invalid.", denied.ErrorMessage)
	})

	t.Run("zero results", func(t *testing.T) {
		resp, err := client.GetMapPlace(ctx, "place-zero")

		require.NoError(t, err)
		assert.Equal(t, places.ZeroResults{}, resp)
	})

	t.Run("over query limit", func(t *testing.T) {
		resp, err := client.GetMapPlace(ctx, "place-over-limit")

		require.NoError(t, err)
		assert.Equal(t, places.OverQueryLimit{}, resp)
	})

	t.Run("unrecognized status", func(t *testing.T) {
		resp, err := client.GetMapPlace(ctx, "place-unknown")

		require.NoError(t, err)
		assert.Equal(t, places.UnknownError{RawStatus: "SOMETHING_ELSE"}, resp)
	})
}

func TestClient_EmptyPlaceID(t *testing.T) {
	srv, hits := newFixtureServer(t)
	mockClient := &mockHTTPClient{
		doFunc: func(_ *http.Request) (*http.Response, error) {
			t.Fatal("HTTP client should not be called for an empty place id")
			return nil, nil
		},
	}
	observer := &fakeObserver{}
	client := places.NewClient(testAPIKey,
		places.WithBaseURL(srv.URL),
		places.WithHTTPClient(mockClient),
		places.WithObserver(observer),
	)

	resp, err := client.GetMapPlace(t.Context(), "")

	require.Error(t, err)
	assert.Nil(t, resp)
	require.ErrorIs(t, err, places.ErrBadRequest)
	assert.NotErrorIs(t, err, places.ErrUnknown)
	assert.Equal(t, "places: bad request: place id is required", err.Error())

	var placesErr *places.Error
	require.ErrorAs(t, err, &placesErr)
	assert.Equal(t, "place id is required", placesErr.Message)

	assert.Zero(t, mockClient.calls.Load())
	assert.Zero(t, hits.Load())
	assert.Empty(t, observer.lookups)
}

func TestClient_Request(t *testing.T) {
	var captured *http.Request
	mockClient := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			captured = req
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewBufferString(`{"status":"ZERO_RESULTS"}`)),
			}, nil
		},
	}
	client := places.NewClient("k&y=1", places.WithHTTPClient(mockClient), places.WithLanguage("uk"))

	_, err := client.GetMapPlace(t.Context(), "ChIJ a/b?c")
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "maps.googleapis.com", captured.URL.Host)
	assert.Equal(t, "https", captured.URL.Scheme)
	assert.Equal(t, places.DetailsPath, captured.URL.Path)
	assert.Equal(t, "ChIJ a/b?c", captured.URL.Query().Get("place_id"))
	assert.Equal(t, "k&y=1", captured.URL.Query().Get("key"))
	assert.Equal(t, "uk", captured.URL.Query().Get("language"))
	assert.Equal(t, "key=k%26y%3D1&language=uk&place_id=ChIJ+a%2Fb%3Fc", captured.URL.RawQuery)
	assert.Equal(t, "application/json", captured.Header.Get("Accept"))
}

func TestClient_TransportFailures(t *testing.T) {
	ctx := t.Context()

	t.Run("connection error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}
		observer := &fakeObserver{}
		client := places.NewClient(testAPIKey, places.WithHTTPClient(mockClient), places.WithObserver(observer))

		resp, err := client.GetMapPlace(ctx, "place-001")

		require.Error(t, err)
		assert.Nil(t, resp)
		require.ErrorIs(t, err, places.ErrUnknown)
		require.ErrorIs(t, err, assert.AnError)
		assert.ErrorContains(t, err, assert.AnError.Error())
		require.Len(t, observer.lookups, 1)
		assert.Equal(t, "http", observer.lookups[0].backend)
		assert.Error(t, observer.lookups[0].err)
	})

	t.Run("server error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
		}))
		defer srv.Close()
		client := places.NewClient(testAPIKey, places.WithBaseURL(srv.URL))

		resp, err := client.GetMapPlace(ctx, "place-001")

		require.ErrorIs(t, err, places.ErrUnknown)
		assert.Nil(t, resp)
		assert.ErrorContains(t, err, "status 503")
		assert.ErrorContains(t, err, "backend unavailable")
	})

	t.Run("undecodable body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		defer srv.Close()
		client := places.NewClient(testAPIKey, places.WithBaseURL(srv.URL))

		resp, err := client.GetMapPlace(ctx, "place-001")

		require.ErrorIs(t, err, places.ErrUnknown)
		assert.Nil(t, resp)
		assert.ErrorContains(t, err, "failed to decode response")
	})

	t.Run("ok without result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"OK"}`))
		}))
		defer srv.Close()
		client := places.NewClient(testAPIKey, places.WithBaseURL(srv.URL))

		resp, err := client.GetMapPlace(ctx, "place-001")

		require.ErrorIs(t, err, places.ErrUnknown)
		require.ErrorIs(t, err, places.ErrMissingResult)
		assert.Nil(t, resp)
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv, hits := newFixtureServer(t)
		client := places.NewClient(testAPIKey, places.WithBaseURL(srv.URL))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		resp, err := client.GetMapPlace(cctx, "place-001")

		require.ErrorIs(t, err, places.ErrUnknown)
		require.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, resp)
		assert.Zero(t, hits.Load())
	})
}

func TestClient_Observer(t *testing.T) {
	srv, _ := newFixtureServer(t)
	observer := &fakeObserver{}
	client := places.NewClient(testAPIKey, places.WithBaseURL(srv.URL), places.WithObserver(observer))

	_, err := client.GetMapPlace(t.Context(), "place-denied")
	require.NoError(t, err)

	require.Len(t, observer.lookups, 1)
	assert.Equal(t, "http", observer.lookups[0].backend)
	require.NoError(t, observer.lookups[0].err)
	assert.Equal(t, places.StatusRequestDenied, observer.lookups[0].resp.Status())
}

func TestClient_ConcurrentCalls(t *testing.T) {
	srv, hits := newFixtureServer(t)
	client := places.NewClient(testAPIKey, places.WithBaseURL(srv.URL))
	ctx := t.Context()

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.GetMapPlace(ctx, "place-001")
			if err != nil {
				errs <- err
				return
			}
			if _, ok := resp.(places.OK); !ok {
				errs <- errors.New("unexpected response variant")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, int32(callers), hits.Load())
}

func TestClient_GetMapPlaceAsync(t *testing.T) {
	srv, _ := newFixtureServer(t)
	client := places.NewClient(testAPIKey, places.WithBaseURL(srv.URL))

	t.Run("delivers the response", func(t *testing.T) {
		res, open := <-client.GetMapPlaceAsync(t.Context(), "place-invalid")

		require.True(t, open)
		require.NoError(t, res.Err)
		assert.Equal(t, places.InvalidRequest{}, res.Response)
	})

	t.Run("delivers the error and closes", func(t *testing.T) {
		ch := client.GetMapPlaceAsync(t.Context(), "")

		res := <-ch
		require.ErrorIs(t, res.Err, places.ErrBadRequest)
		assert.Nil(t, res.Response)

		_, open := <-ch
		assert.False(t, open)
	})
}
