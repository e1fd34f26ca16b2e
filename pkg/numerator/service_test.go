package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT: current_val grows by the
// passed increment (1 for strict, RangeSize for cached).
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	m.calls++
	return &mockRow{val: m.currentValue}
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("INV")
	period := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00002", num)

	assert.Equal(t, 2, q.calls, "strict strategy hits the database per number")
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("SR")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}
	period := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 10; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
		assert.Equal(t, svc.formatNumber(cfg, period, int64(i)), num)
	}
	assert.Equal(t, 1, q.calls, "whole range served from one reservation")

	// 11th number exhausts the range and reserves another one
	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "SR-2026-00011", num)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_ResetPeriods(t *testing.T) {
	svc := New(&mockQuerier{})
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		resetPeriod string
		wantKey     string
	}{
		{"yearly", "year", "PR_2026"},
		{"monthly", "month", "PR_2026_03"},
		{"never", "never", "PR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("PR")
			cfg.ResetPeriod = tt.resetPeriod
			assert.Equal(t, tt.wantKey, svc.buildKey(cfg, period))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	svc := New(&mockQuerier{})
	period := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cfg := DefaultConfig("DG")
	assert.Equal(t, "DG-2026-00042", svc.formatNumber(cfg, period, 42))

	cfg.IncludeYear = false
	cfg.PadWidth = 3
	assert.Equal(t, "DG-042", svc.formatNumber(cfg, period, 42))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("INV-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("INV-00007"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
}

func TestGetNextNumber_Concurrent(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("INV")
	opts := &Options{Strategy: StrategyCached, RangeSize: 100}
	period := time.Now()

	var wg sync.WaitGroup
	seen := sync.Map{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num, err := svc.GetNextNumber(ctx, cfg, opts, period)
			assert.NoError(t, err)
			_, dup := seen.LoadOrStore(num, true)
			assert.False(t, dup, "duplicate number %s", num)
		}()
	}
	wg.Wait()
}
