package assistant

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func postAsk(t *testing.T, h *HandlerImpl, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ask-ai", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.AskAI(rr, req)
	return rr
}

func TestHandlerImpl_AskAI(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("returns the generated answer", func(t *testing.T) {
		generator := new(MockGenerator)
		generator.On("Generate", mock.Anything, "best kebab in Izmir?").
			Return("Try the Kemeralti bazaar area.", nil).Once()
		h := NewHandlerImpl(generator, logger)

		rr := postAsk(t, h, `{"prompt":"best kebab in Izmir?"}`)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp AskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Try the Kemeralti bazaar area.", resp.Response)
		assert.Empty(t, resp.Error)
	})

	t.Run("generation failure stays a 200 with an error field", func(t *testing.T) {
		generator := new(MockGenerator)
		generator.On("Generate", mock.Anything, mock.Anything).
			Return("", assert.AnError).Once()
		h := NewHandlerImpl(generator, logger)

		rr := postAsk(t, h, `{"prompt":"anything"}`)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp AskResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "AI response failed", resp.Error)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		generator := new(MockGenerator)
		h := NewHandlerImpl(generator, logger)
		rr := postAsk(t, h, `{"prompt"`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})
}
