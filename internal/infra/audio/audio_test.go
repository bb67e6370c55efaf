package audio

import (
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualOpener_Open(t *testing.T) {
	o := NewVirtualOpener()

	_, err := o.Open("", time.Second)
	assert.ErrorIs(t, err, ErrNoSource)

	out, err := o.Open("https://example.com/a.m4a", 0)
	require.NoError(t, err)
	assert.True(t, out.Paused(), "fresh output must be paused")
	assert.Equal(t, "https://example.com/a.m4a", out.Source())
	assert.Equal(t, DefaultLength, out.(*Virtual).length)
}

func TestVirtual_EndsAfterLength(t *testing.T) {
	out, err := NewVirtualOpener().Open("a.m4a", 50*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, out.Play())
	assert.False(t, out.Paused())

	select {
	case <-out.Done():
	case <-time.After(time.Second):
		t.Fatal("output did not end")
	}
	assert.True(t, out.Paused())
}

func TestVirtual_PauseStopsClock(t *testing.T) {
	out, err := NewVirtualOpener().Open("a.m4a", 80*time.Millisecond)
	require.NoError(t, err)
	v := out.(*Virtual)

	require.NoError(t, v.Play())
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, v.Pause())
	elapsed := v.Elapsed()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, elapsed, v.Elapsed())

	select {
	case <-v.Done():
		t.Fatal("paused output must not end")
	default:
	}

	require.NoError(t, v.Play())
	select {
	case <-v.Done():
	case <-time.After(time.Second):
		t.Fatal("resumed output did not end")
	}
}

func TestVirtual_Clear(t *testing.T) {
	out, err := NewVirtualOpener().Open("a.m4a", time.Minute)
	require.NoError(t, err)
	require.NoError(t, out.Play())

	require.NoError(t, out.Clear())
	assert.Equal(t, "", out.Source())
	assert.True(t, out.Paused())
	assert.ErrorIs(t, out.Play(), ErrNoSource)

	select {
	case <-out.Done():
	default:
		t.Fatal("cleared output must close done")
	}

	// clearing twice is harmless
	require.NoError(t, out.Clear())
}

func TestExpandArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "placeholder replaced",
			args:     []string{"-nodisp", "-autoexit", "{src}"},
			expected: []string{"-nodisp", "-autoexit", "song.m4a"},
		},
		{
			name:     "placeholder inside argument",
			args:     []string{"--input={src}"},
			expected: []string{"--input=song.m4a"},
		},
		{
			name:     "appended without placeholder",
			args:     []string{"-q"},
			expected: []string{"-q", "song.m4a"},
		},
		{
			name:     "no args",
			args:     nil,
			expected: []string{"song.m4a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandArgs(tt.args, "song.m4a"))
		})
	}
}

func TestNewProcessOpener_Validation(t *testing.T) {
	_, err := NewProcessOpener("", nil)
	assert.Error(t, err)

	_, err = NewProcessOpener("definitely-not-a-real-player-binary", nil)
	assert.Error(t, err)
}

func TestProcess_ExitClosesDone(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true command not available")
	}

	o, err := NewProcessOpener("true", nil)
	require.NoError(t, err)

	out, err := o.Open("song.m4a", 0)
	require.NoError(t, err)
	require.NoError(t, out.Play())

	select {
	case <-out.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("player exit did not close done")
	}
}

func TestProcess_ClearBeforePlay(t *testing.T) {
	p := &Process{src: "song.m4a", paused: true, done: make(chan struct{})}

	require.NoError(t, p.Clear())
	assert.Equal(t, "", p.Source())

	select {
	case <-p.Done():
	default:
		t.Fatal("cleared output must close done")
	}
}
