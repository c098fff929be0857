package sim

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunCases(t *testing.T) {
	out := make([]int, 20)
	err := RunCases(context.Background(), len(out), 4, func(ctx context.Context, i int) error {
		out[i] = i * i
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out {
		if v != i*i {
			t.Errorf("case %d: expected %d, got %d", i, i*i, v)
		}
	}
}

func TestRunCasesError(t *testing.T) {
	boom := errors.New("boom")
	err := RunCases(context.Background(), 10, 2, func(ctx context.Context, i int) error {
		if i == 3 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestParallelFor(t *testing.T) {
	var sum int64
	ParallelFor(1000, 10, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt64(&sum, int64(i))
		}
	})
	if sum != 999*1000/2 {
		t.Errorf("expected %d, got %d", 999*1000/2, sum)
	}
}
