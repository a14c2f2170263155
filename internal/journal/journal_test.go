package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/hostctl/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Path = filepath.Join(t.TempDir(), "journal.db")
	cfg.FlushInterval = time.Hour

	return cfg
}

func TestDisabledJournalIsNoop(t *testing.T) {
	j, err := NewService(DefaultConfig())
	require.NoError(t, err)

	assert.False(t, j.Enabled())
	require.NoError(t, j.Record(context.Background(), &Entry{Action: "volume"}))

	entries, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	require.NoError(t, j.Close())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Path = ""

	_, err := NewService(cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrInvalidPath))
}

func TestRecordAndRecent(t *testing.T) {
	j, err := NewService(testConfig(t))
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	require.NoError(t, j.Record(ctx, &Entry{Time: now, Action: "volume", OK: true, Duration: 40 * time.Millisecond}))
	require.NoError(t, j.Record(ctx, &Entry{
		Time:    now.Add(time.Second),
		Action:  "theme",
		Kind:    "execution",
		Message: "could not determine current theme",
	}))

	entries, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "theme", entries[0].Action)
	assert.False(t, entries[0].OK)
	assert.Equal(t, "execution", entries[0].Kind)

	assert.Equal(t, "volume", entries[1].Action)
	assert.True(t, entries[1].OK)
	assert.Equal(t, 40*time.Millisecond, entries[1].Duration)
	assert.True(t, now.Equal(entries[1].Time))
}

func TestRecordRejectsEmptyEntry(t *testing.T) {
	j, err := NewService(testConfig(t))
	require.NoError(t, err)
	defer j.Close()

	err = j.Record(context.Background(), &Entry{})
	assert.True(t, errors.HasCode(err, ErrInvalidEntry))
}

func TestCloseFlushesBuffer(t *testing.T) {
	cfg := testConfig(t)

	j, err := NewService(cfg)
	require.NoError(t, err)
	require.NoError(t, j.Record(context.Background(), &Entry{Time: time.Now(), Action: "power", OK: true}))
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	reopened, err := NewService(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "power", entries[0].Action)
}
