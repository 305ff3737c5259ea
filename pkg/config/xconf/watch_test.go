package xconf

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_Reload(t *testing.T) {
	path := writeFile(t, "outbound.yaml", "enabled: true\n")
	src, err := Open(path)
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		last Settings
		errs []error
	)
	w, err := Watch(src, func(s Settings, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs = append(errs, err)
			return
		}
		last = s
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	w.StartAsync()
	w.StartAsync()
	defer func() { assert.NoError(t, w.Stop()) }()

	require.NoError(t, os.WriteFile(path, []byte("enabled: false\nbreadcrumbs: false\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return !last.Enabled && !last.Breadcrumbs && last.SampleRate == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Empty(t, errs)
	mu.Unlock()
}

func TestWatch_InvalidSettingsReported(t *testing.T) {
	path := writeFile(t, "outbound.yaml", "sample_rate: 1\n")
	src, err := Open(path)
	require.NoError(t, err)

	got := make(chan error, 8)
	w, err := Watch(src, func(_ Settings, err error) { got <- err }, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	w.StartAsync()
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("sample_rate: 7\n"), 0o600))

	select {
	case err := <-got:
		assert.ErrorIs(t, err, ErrInvalidSettings)
	case <-time.After(2 * time.Second):
		t.Fatal("no callback")
	}
}

func TestWatch_NotReloadable(t *testing.T) {
	src, err := OpenBytes(nil, FormatYAML)
	require.NoError(t, err)

	_, err = Watch(src, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)

	_, err = Watch(nil, nil)
	assert.ErrorIs(t, err, ErrNotReloadable)
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	src, err := Open(writeFile(t, "outbound.yaml", ""))
	require.NoError(t, err)

	w, err := Watch(src, nil)
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	w.StartAsync()
}
