package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/blogstat"
	bshttp "github.com/fwojciec/blogstat/http"
	"github.com/fwojciec/blogstat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, stats blogstat.BlogStatsService, profiles blogstat.ProfileResolver) (*bshttp.Server, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return bshttp.NewServer(stats, profiles, logger), &buf
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t, nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_BlogStats(t *testing.T) {
	t.Parallel()

	t.Run("returns word count and headings", func(t *testing.T) {
		t.Parallel()

		var gotURL string
		stats := &mock.BlogStatsService{
			BlogStatsFn: func(ctx context.Context, url string) (*blogstat.ExtractionResult, error) {
				gotURL = url
				return &blogstat.ExtractionResult{
					WordCount: 42,
					Headings: []*blogstat.HeadingNode{
						{Text: "Intro", Subheadings: []*blogstat.HeadingNode{
							{Text: "Background", Subheadings: []*blogstat.HeadingNode{}},
						}},
					},
				}, nil
			},
		}
		srv, logs := newServer(t, stats, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog_stats?url=https%3A%2F%2Fexample.com%2Fpost%3Fid%3D1", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "https://example.com/post?id=1", gotURL)
		assert.JSONEq(t, `{
			"word-count": 42,
			"headings": [{"heading":"Intro","subheadings":[{"heading":"Background","subheadings":[]}]}]
		}`, rec.Body.String())
		assert.Contains(t, logs.String(), "path=/blog_stats")
		assert.Contains(t, logs.String(), "status=200")
	})

	t.Run("rejects missing url", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog_stats", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"invalid","message":"url query parameter is required"}`, rec.Body.String())
	})

	t.Run("rejects relative url", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog_stats?url=/just/a/path", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no content", blogstat.Errorf(blogstat.ENOCONTENT, "no paragraphs"), http.StatusUnprocessableEntity, blogstat.ENOCONTENT},
		{"no parent", blogstat.Errorf(blogstat.ENOPARENT, "no parent"), http.StatusUnprocessableEntity, blogstat.ENOPARENT},
		{"malformed", blogstat.Errorf(blogstat.EMALFORMED, "orphan h3"), http.StatusUnprocessableEntity, blogstat.EMALFORMED},
		{"scroll limit", fmt.Errorf("render: %w", blogstat.Errorf(blogstat.ETIMEOUT, "still growing")), http.StatusGatewayTimeout, blogstat.ETIMEOUT},
		{"deadline", fmt.Errorf("navigating: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, blogstat.ETIMEOUT},
		{"upstream", blogstat.Errorf(blogstat.EUPSTREAM, "HTTP 503"), http.StatusBadGateway, blogstat.EUPSTREAM},
		{"internal", errors.New("browser crashed"), http.StatusInternalServerError, blogstat.EINTERNAL},
	}
	for _, tt := range tests {
		t.Run("maps "+tt.name+" error", func(t *testing.T) {
			t.Parallel()

			stats := &mock.BlogStatsService{
				BlogStatsFn: func(ctx context.Context, url string) (*blogstat.ExtractionResult, error) {
					return nil, tt.err
				},
			}
			srv, _ := newServer(t, stats, nil)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog_stats?url=https://example.com", nil))

			assert.Equal(t, tt.status, rec.Code)
			var body bshttp.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error)
			assert.NotContains(t, rec.Body.String(), "word-count")
		})
	}

	t.Run("hides and logs internal error details", func(t *testing.T) {
		t.Parallel()

		stats := &mock.BlogStatsService{
			BlogStatsFn: func(ctx context.Context, url string) (*blogstat.ExtractionResult, error) {
				return nil, errors.New("secret failure detail")
			},
		}
		srv, logs := newServer(t, stats, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog_stats?url=https://example.com", nil))

		assert.NotContains(t, rec.Body.String(), "secret failure detail")
		assert.Contains(t, logs.String(), "secret failure detail")
	})
}

func TestServer_BulkProfileSearch(t *testing.T) {
	t.Parallel()

	body := `{"names":["Ada"],"designation":["Engineer"],"location":["London"]}`

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		t.Run("passes upstream response through on "+method, func(t *testing.T) {
			t.Parallel()

			var got *blogstat.BulkProfileRequest
			profiles := &mock.ProfileResolver{
				ResolveProfilesFn: func(ctx context.Context, req *blogstat.BulkProfileRequest) (json.RawMessage, error) {
					got = req
					return json.RawMessage(`{"matched":1}`), nil
				},
			}
			srv, _ := newServer(t, nil, profiles)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(method, "/linkedinUrlSearch/bulk", strings.NewReader(body)))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"matched":1}`, rec.Body.String())
			require.NotNil(t, got)
			assert.Equal(t, []string{"Ada"}, got.Names)
			assert.Equal(t, []string{"Engineer"}, got.Designation)
			assert.Equal(t, []string{"London"}, got.Location)
		})
	}

	t.Run("is not mounted without a resolver", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/linkedinUrlSearch/bulk", strings.NewReader(body)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		srv, _ := newServer(t, nil, &mock.ProfileResolver{
			ResolveProfilesFn: func(ctx context.Context, req *blogstat.BulkProfileRequest) (json.RawMessage, error) {
				t.Fatal("resolver should not be called")
				return nil, nil
			},
		})

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/linkedinUrlSearch/bulk", strings.NewReader(`{"names":`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps resolver errors", func(t *testing.T) {
		t.Parallel()

		profiles := &mock.ProfileResolver{
			ResolveProfilesFn: func(ctx context.Context, req *blogstat.BulkProfileRequest) (json.RawMessage, error) {
				return nil, blogstat.Errorf(blogstat.EINVALID, "lists must have equal lengths")
			},
		}
		srv, _ := newServer(t, nil, profiles)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/linkedinUrlSearch/bulk", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"error":"invalid","message":"lists must have equal lengths"}`, string(resp))
	})
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusUnprocessableEntity, bshttp.ErrorStatusCode(blogstat.ENOCONTENT))
	assert.Equal(t, http.StatusGatewayTimeout, bshttp.ErrorStatusCode(blogstat.ETIMEOUT))
	assert.Equal(t, http.StatusInternalServerError, bshttp.ErrorStatusCode("unknown"))
}
