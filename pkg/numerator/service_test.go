package numerator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
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

// seqQuerier simulates the sys_sequences counter. Strict calls carry only
// the key (always +1); cached range reservation passes the increment as the
// second argument.
type seqQuerier struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
}

func (m *seqQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}
	m.currentValue += increment
	return &mockRow{val: m.currentValue}
}

func expectedNumber(prefix string, num int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, time.Now().Year(), num)
}

func TestGetNextNumber_Strict(t *testing.T) {
	q := &seqQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("SO")

	num, err := svc.GetNextNumber(ctx, cfg, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := expectedNumber("SO", 1); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}

	num, err = svc.GetNextNumber(ctx, cfg, nil, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := expectedNumber("SO", 2); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &seqQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("SO")

	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	num, err := svc.GetNextNumber(ctx, cfg, opts, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := expectedNumber("SO", 1); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
	if q.currentValue != 10 {
		t.Errorf("expected reserved range up to 10, got %d", q.currentValue)
	}

	// The rest of the range is served from memory without touching the DB.
	callsAfterReserve := q.calls
	for i := int64(2); i <= 10; i++ {
		num, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := expectedNumber("SO", i); num != want {
			t.Errorf("expected %s, got %s", want, num)
		}
	}
	if q.calls != callsAfterReserve {
		t.Errorf("expected no extra DB calls, got %d", q.calls-callsAfterReserve)
	}

	// Number 11 triggers a new range reservation.
	num, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := expectedNumber("SO", 11); num != want {
		t.Errorf("expected %s, got %s", want, num)
	}
	if q.currentValue != 20 {
		t.Errorf("expected reserved range up to 20, got %d", q.currentValue)
	}
}

func TestGetNextNumber_Concurrent(t *testing.T) {
	q := &seqQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := DefaultConfig("SO")
	opts := &Options{Strategy: StrategyCached, RangeSize: 25}

	const workers = 8
	const perWorker = 20

	var wg sync.WaitGroup
	seen := sync.Map{}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				num, err := svc.GetNextNumber(ctx, cfg, opts, time.Now())
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if _, dup := seen.LoadOrStore(num, true); dup {
					t.Errorf("duplicate number generated: %s", num)
				}
			}
		}()
	}
	wg.Wait()
}

func TestFormatNumber(t *testing.T) {
	svc := New(&seqQuerier{})
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  Config
		num  int64
		want string
	}{
		{"with year", Config{Prefix: "SO", IncludeYear: true, PadWidth: 5}, 42, "SO-2026-00042"},
		{"without year", Config{Prefix: "ADJ", PadWidth: 4}, 7, "ADJ-0007"},
		{"default pad", Config{Prefix: "SO", IncludeYear: true}, 1, "SO-2026-00001"},
		{"overflow pad", Config{Prefix: "SO", IncludeYear: true, PadWidth: 3}, 12345, "SO-2026-12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.formatNumber(tt.cfg, period, tt.num); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBuildKey(t *testing.T) {
	svc := New(&seqQuerier{})
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		reset string
		want  string
	}{
		{"year", "SO_2026"},
		{"month", "SO_2026_03"},
		{"never", "SO"},
	}
	for _, tt := range tests {
		cfg := Config{Prefix: "SO", ResetPeriod: tt.reset}
		if got := svc.buildKey(cfg, period); got != tt.want {
			t.Errorf("reset %q: expected %s, got %s", tt.reset, tt.want, got)
		}
	}
}
