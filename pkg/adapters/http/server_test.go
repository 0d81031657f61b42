package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/udlcoach"
	"github.com/aretw0/udlcoach/pkg/adapters/file"
	httpAdapter "github.com/aretw0/udlcoach/pkg/adapters/http"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCoach returns canned results for error mapping tests.
type fakeCoach struct {
	err      error
	uploaded string
}

func (f *fakeCoach) Send(ctx context.Context, token, message string) (*domain.Reply, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Reply{Token: "tok", Text: "echo: " + message, State: domain.StateStart, Branch: domain.BranchNone, MessageCount: 2}, nil
}

func (f *fakeCoach) Upload(ctx context.Context, token, name string, data []byte) (*domain.Reply, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploaded = name + ":" + string(data)
	return &domain.Reply{Token: token, Text: "received", State: domain.StateEvaluateAligned, Branch: domain.BranchEvaluate}, nil
}

func (f *fakeCoach) Reset(ctx context.Context, token string) (*domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewRecord(token, time.Now()), nil
}

func (f *fakeCoach) History(ctx context.Context, token string) (*domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return domain.NewRecord(token, time.Now()), nil
}

func (f *fakeCoach) Sessions(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{"a", "b"}, nil
}

var _ ports.Coach = (*fakeCoach)(nil)

type keywordBackend struct{}

func (keywordBackend) ClassifySlots(ctx context.Context, text string) (domain.SlotResult, error) {
	return domain.SlotResult{Subject: "Math", Grade: "4", Objectives: "fractions"}, nil
}

func (keywordBackend) ClassifyAlignment(ctx context.Context, assessment string) (domain.Alignment, error) {
	return domain.AlignmentNotAligned, nil
}

func (keywordBackend) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	return "## " + string(req.Kind), nil
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestChat_Conversation(t *testing.T) {
	eng := udlcoach.New(udlcoach.WithClassifier(keywordBackend{}), udlcoach.WithGenerator(keywordBackend{}))
	h := httpAdapter.NewHandler(eng)

	w := do(t, h, http.MethodPost, "/api/chat", httpAdapter.ChatRequest{Message: "design"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[httpAdapter.ChatResponse](t, w)
	assert.NotEmpty(t, first.SessionToken)
	assert.Equal(t, domain.StateDesignMode, first.State)
	assert.Equal(t, domain.BranchDesign, first.Branch)
	assert.Equal(t, 2, first.MessageCount)

	w = do(t, h, http.MethodPost, "/api/chat", httpAdapter.ChatRequest{Message: "4th grade fractions", SessionToken: first.SessionToken})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[httpAdapter.ChatResponse](t, w)
	assert.Equal(t, first.SessionToken, second.SessionToken)
	assert.Equal(t, domain.StateDesignInputReceived, second.State)
	assert.Equal(t, "Math", second.Context.Subject)

	w = do(t, h, http.MethodGet, "/api/session/"+first.SessionToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode[httpAdapter.SessionResponse](t, w)
	assert.Len(t, hist.Messages, 4)
	assert.Equal(t, domain.RoleUser, hist.Messages[0].Role)
	assert.Equal(t, "design", hist.Messages[0].Text)
	assert.False(t, hist.CreatedAt.IsZero())

	w = do(t, h, http.MethodPost, "/api/session/"+first.SessionToken+"/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reset := decode[httpAdapter.SessionResponse](t, w)
	assert.Equal(t, domain.StateStart, reset.State)
	assert.Empty(t, reset.Messages)

	w = do(t, h, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[httpAdapter.SessionsResponse](t, w)
	assert.Equal(t, 1, list.Count)
	assert.Equal(t, []string{first.SessionToken}, list.Sessions)
}

func TestChat_Validation(t *testing.T) {
	h := httpAdapter.NewHandler(udlcoach.New())

	tests := []struct {
		name string
		body any
		want string
	}{
		{"malformed json", "{", "Invalid request body"},
		{"missing message", map[string]string{"session_token": "x"}, "Message is required"},
		{"whitespace message", httpAdapter.ChatRequest{Message: "   "}, domain.ErrEmptyMessage.Error()},
		{"token too long", httpAdapter.ChatRequest{Message: "hi", SessionToken: strings.Repeat("a", 129)}, "Invalid field SessionToken: max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decode[httpAdapter.ErrorResponse](t, w).Error)
		})
	}
}

func TestChat_PathTokenIsBadRequest(t *testing.T) {
	h := httpAdapter.NewHandler(udlcoach.New(udlcoach.WithRepository(file.New(t.TempDir()))))

	w := do(t, h, http.MethodPost, "/api/chat", httpAdapter.ChatRequest{Message: "design", SessionToken: "../x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: too big", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: classify slots: timeout", domain.ErrCapabilityUnavailable), http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := httpAdapter.NewHandler(&fakeCoach{err: tt.err})
			w := do(t, h, http.MethodPost, "/api/chat", httpAdapter.ChatRequest{Message: "hi"})
			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "disk on fire")
			assert.NotContains(t, w.Body.String(), "timeout")
		})
	}
}

func TestCapabilityFailureCarriesUserText(t *testing.T) {
	h := httpAdapter.NewHandler(&fakeCoach{err: domain.ErrCapabilityUnavailable})
	w := do(t, h, http.MethodPost, "/api/chat", httpAdapter.ChatRequest{Message: "hi"})

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decode[httpAdapter.ErrorResponse](t, w).Response, "temporarily unavailable")
}

func TestSessionNotFound(t *testing.T) {
	h := httpAdapter.NewHandler(udlcoach.New())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/session/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/session/nope/reset", nil).Code)
}

func TestUpload(t *testing.T) {
	coach := &fakeCoach{}
	h := httpAdapter.NewHandler(coach)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "quiz.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("Label the cell"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/session/tok/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "quiz.txt:Label the cell", coach.uploaded)
	assert.Equal(t, "tok", decode[httpAdapter.ChatResponse](t, w).SessionToken)

	w = do(t, h, http.MethodPost, "/api/session/tok/upload", "not multipart")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_Unsupported(t *testing.T) {
	h := httpAdapter.NewHandler(&fakeCoach{err: fmt.Errorf("%w: \".pdf\"", domain.ErrUnsupportedDocument)})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "quiz.pdf")
	_, _ = part.Write([]byte("%PDF"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/session/tok/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	h := httpAdapter.NewHandler(&fakeCoach{}, httpAdapter.WithVersion("1.2.3"))
	w := do(t, h, http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[httpAdapter.HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, 2, resp.ActiveSessions)

	h = httpAdapter.NewHandler(&fakeCoach{err: errors.New("redis down")})
	w = do(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCORS(t *testing.T) {
	h := httpAdapter.NewHandler(&fakeCoach{})
	w := do(t, h, http.MethodOptions, "/api/chat", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsMount(t *testing.T) {
	h := httpAdapter.NewHandler(&fakeCoach{})
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", nil).Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("udlcoach_turns_total 1")) })
	h = httpAdapter.NewHandler(&fakeCoach{}, httpAdapter.WithMetricsHandler(metrics))
	w := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "udlcoach_turns_total")
}
