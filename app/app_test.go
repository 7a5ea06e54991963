package app

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"linphase/hal"
	"linphase/mathlet/gfx"
)

func TestSystemServesState(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, logs := observer.New(zap.InfoLevel)
	h := hal.New(hal.HostConfig{Log: zap.New(core)})
	s := New(h, Config{Session: "s-1"})
	require.NoError(t, s.Disabled())
	assert.Equal(t, "s-1", s.Session())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := s.State(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":0.5,"b":1.5,"c":-0.5,"d":0.5}`, string(got))

	got, err = s.SetState(ctx, []byte(`{"a":-1,"b":0,"c":0,"d":2}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":-1,"b":0,"c":0,"d":2}`, string(got))

	got, err = s.Grade(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":-1,"b":0,"c":0,"d":2}`, string(got))
	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Step())

	var buf bytes.Buffer
	require.NoError(t, s.Snapshot(&buf, 1))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())

	s.Shutdown()
	s.Shutdown()
	assert.ErrorIs(t, s.Step(), hal.ErrWindowClosed)

	require.Eventually(t, func() bool {
		return logs.FilterMessageSnippet("zone saddle").Len() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestSystemPointerInput(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := hal.New(hal.HostConfig{})
	inj := h.(hal.Injector)
	s := New(h, Config{})
	defer s.Shutdown()

	// Press and drag on the det graph, from (1, 1) to its bottom-right corner.
	inj.InjectPointer(hal.PointerEvent{Action: hal.PointerDown, X: 180, Y: 397})
	inj.InjectPointer(hal.PointerEvent{Action: hal.PointerDrag, X: 900, Y: 900})
	inj.InjectPointer(hal.PointerEvent{Action: hal.PointerUp, X: 900, Y: 900})

	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		got, err := s.State(ctx)
		return err == nil && string(got) != `{"a":0.5,"b":1.5,"c":-0.5,"d":0.5}`
	}, 2*time.Second, 20*time.Millisecond)
}

func TestSystemStateFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":0,"b":1,"c":-1,"d":0}`), 0o644))

	s := New(hal.New(hal.HostConfig{}), Config{StateFile: path})
	defer s.Shutdown()

	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		got, err := s.State(ctx)
		return err == nil && string(got) == `{"a":0,"b":1,"c":-1,"d":0}`
	}, 3*time.Second, 20*time.Millisecond)
}

func TestFeatureCheckDisablesWidget(t *testing.T) {
	defer goleak.VerifyNone(t)

	core, logs := observer.New(zap.InfoLevel)
	h := hal.New(hal.HostConfig{Width: 320, Height: 240, Log: zap.New(core)})
	s := New(h, Config{})
	defer s.Shutdown()

	err := s.Disabled()
	require.ErrorIs(t, err, ErrFeatureMissing)
	assert.Contains(t, err.Error(), "320x240")

	_, err = s.State(context.Background())
	assert.ErrorIs(t, err, ErrFeatureMissing)
	assert.ErrorIs(t, s.Clear(context.Background()), ErrFeatureMissing)
	assert.Equal(t, 1, logs.FilterMessageSnippet("display is 320x240").Len())

	// The alert was presented.
	snap := h.Display().Framebuffer().(hal.Snapshotter).Snapshot()
	r, g, b, _ := snap.At(0, 0).RGBA()
	assert.NotZero(t, r|g|b)
}

func TestTakeRunes(t *testing.T) {
	tests := []struct {
		in         string
		n          int
		head, tail string
	}{
		{"abc", 5, "abc", ""},
		{"abcdef", 4, "abcd", "ef"},
		{"λλλ", 2, "λλ", "λ"},
		{"", 3, "", ""},
	}
	for _, tt := range tests {
		head, tail := takeRunes(tt.in, tt.n)
		assert.Equal(t, tt.head, head, tt.in)
		assert.Equal(t, tt.tail, tail, tt.in)
	}
}

func TestDrawAlertWraps(t *testing.T) {
	h := hal.New(hal.HostConfig{Width: 120, Height: 80})
	c := gfx.NewCanvas(h.Display().Framebuffer())
	drawAlert(c, []string{"a very long message that cannot fit on one line of the alert box"})
	require.NoError(t, c.Display())
}
