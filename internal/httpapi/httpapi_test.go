package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"linphase/hal"
	portraitclient "linphase/mathlet/client/portrait"
	"linphase/mathlet/tasks/portrait"
)

type fakeState struct {
	state   []byte
	err     error
	cleared int
	panics  bool
}

func (f *fakeState) State(context.Context) ([]byte, error) { return f.state, f.err }
func (f *fakeState) Grade(context.Context) ([]byte, error) { return f.state, f.err }

func (f *fakeState) SetState(_ context.Context, body []byte) ([]byte, error) {
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	if _, err := portrait.ParseState(body); err != nil {
		return nil, err
	}
	f.state = body
	return body, nil
}

func (f *fakeState) Clear(context.Context) error {
	f.cleared++
	return f.err
}

func newTestRouter(st State, snap SnapshotFunc) http.Handler {
	return NewRouter(NewHandler(st, snap, zap.NewNop()), "sess-1")
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(&fakeState{}, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "sess-1", rec.Header().Get("X-Session-Id"))
}

func TestStateRoutes(t *testing.T) {
	st := &fakeState{state: []byte(`{"a":0.5,"b":1.5,"c":-0.5,"d":0.5}`)}
	h := newTestRouter(st, nil)

	rec := do(t, h, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"a":0.5,"b":1.5,"c":-0.5,"d":0.5}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/state", `{"a":1,"b":0,"c":0,"d":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"a":1,"b":0,"c":0,"d":1}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/grade", "")
	assert.JSONEq(t, `{"a":1,"b":0,"c":0,"d":1}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/clear", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, st.cleared)

	rec = do(t, h, http.MethodDelete, "/state", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPutStateErrors(t *testing.T) {
	h := newTestRouter(&fakeState{}, nil)

	rec := do(t, h, http.MethodPut, "/state", `{"a":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	rec = do(t, h, http.MethodPut, "/state", strings.Repeat(" ", maxBody+1))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", portrait.ErrBadState), http.StatusBadRequest},
		{portraitclient.ErrClosed, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := do(t, newTestRouter(&fakeState{err: tt.err}, nil), http.MethodGet, "/state", "")
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}

func TestRecoveryLogsPanic(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := NewRouter(NewHandler(&fakeState{panics: true}, nil, zap.New(core)), "")

	rec := do(t, h, http.MethodPut, "/state", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("http handler panic").Len())
	assert.Empty(t, rec.Header().Get("X-Session-Id"))
}

func TestSnapshot(t *testing.T) {
	h := hal.New(hal.HostConfig{Width: 4, Height: 3})
	fb := h.Display().Framebuffer()
	fb.ClearRGB(255, 0, 0)
	require.NoError(t, fb.Present())
	snap := func(w io.Writer, scale int) error { return hal.SnapshotPNG(w, fb, scale) }
	r := newTestRouter(&fakeState{}, snap)

	rec := do(t, r, http.MethodGet, "/snapshot.png?scale=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())

	rec = do(t, r, http.MethodGet, "/snapshot.png?scale=99", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, newTestRouter(&fakeState{}, nil), http.MethodGet, "/snapshot.png", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
