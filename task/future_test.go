package task

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func TestJustFailStopped(t *testing.T) {
	v, err := Just(42).Result()
	if v != 42 || err != nil {
		t.Errorf("Just(42) = %d, %v", v, err)
	}

	boom := errors.New("boom")
	if _, err := Fail[int](boom).Result(); !errors.Is(err, boom) || OutcomeOf(err) != Failed {
		t.Errorf("Fail = %v (%s), want boom (failed)", err, OutcomeOf(err))
	}

	if _, err := Stopped[int]().Result(); !IsStopped(err) || OutcomeOf(err) != Cancelled {
		t.Errorf("Stopped = %v (%s), want stopped (cancelled)", err, OutcomeOf(err))
	}
}

func TestSpawn(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	f := Spawn(context.Background(), pool, func(context.Context) (string, error) {
		return "done", nil
	})
	v, err := f.Await(context.Background())
	if v != "done" || err != nil {
		t.Errorf("Await = %q, %v", v, err)
	}
}

func TestSpawn_Panic(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	f := Spawn(context.Background(), pool, func(context.Context) (int, error) {
		var m map[string]int
		m["x"] = 1
		return 0, nil
	})
	_, err := f.Result()
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PanicError", err)
	}
	if len(pe.Stack) == 0 {
		t.Error("PanicError has no stack")
	}
}

func TestSpawn_CancelledBeforeStart(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Bool
	f := Spawn(ctx, pool, func(context.Context) (int, error) {
		ran.Store(true)
		return 1, nil
	})
	if _, err := f.Result(); !IsStopped(err) {
		t.Errorf("err = %v, want stopped", err)
	}
	if ran.Load() {
		t.Error("function ran with a cancelled context")
	}
}

func TestSpawn_ClosedPool(t *testing.T) {
	pool := NewPool(1)
	pool.Close()

	f := Spawn(context.Background(), pool, func(context.Context) (int, error) { return 1, nil })
	_, err := f.Result()
	if !IsStopped(err) || !errors.Is(err, ErrPoolClosed) {
		t.Errorf("err = %v, want stopped wrapping ErrPoolClosed", err)
	}
}

func TestThen(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	f := Spawn(context.Background(), pool, func(context.Context) (int, error) { return 21, nil })
	g := Then(f, func(v int) (string, error) { return strconv.Itoa(v * 2), nil })
	if v, err := g.Result(); v != "42" || err != nil {
		t.Errorf("Then = %q, %v", v, err)
	}
}

func TestThen_PropagatesWithoutCalling(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name string
		f    *Future[int]
		want error
	}{
		{"error", Fail[int](boom), boom},
		{"stopped", Stopped[int](), ErrStopped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Then(tt.f, func(int) (int, error) {
				t.Error("continuation called")
				return 0, nil
			})
			if _, err := g.Result(); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestThen_OnResolvedFuture(t *testing.T) {
	g := Then(Just(1), func(v int) (int, error) { return v + 1, nil })
	select {
	case <-g.Done():
	default:
		t.Fatal("Then on a resolved future should complete synchronously")
	}
	if v, _ := g.Result(); v != 2 {
		t.Errorf("v = %d, want 2", v)
	}
}

func TestWhenAll(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	fs := make([]*Future[int], 10)
	for i := range fs {
		fs[i] = Spawn(context.Background(), pool, func(context.Context) (int, error) {
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			return i * i, nil
		})
	}
	vs, err := WhenAll(context.Background(), fs...).Result()
	if err != nil {
		t.Fatalf("WhenAll: %v", err)
	}
	for i, v := range vs {
		if v != i*i {
			t.Errorf("vs[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestWhenAll_Empty(t *testing.T) {
	vs, err := WhenAll[int](context.Background()).Result()
	if err != nil || len(vs) != 0 {
		t.Errorf("WhenAll() = %v, %v", vs, err)
	}
}

func TestWhenAll_FirstErrorWins(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	boom := errors.New("boom")
	release := make(chan struct{})
	defer close(release)

	slow := Spawn(context.Background(), pool, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})
	failing := Spawn(context.Background(), pool, func(context.Context) (int, error) {
		return 0, boom
	})

	// the join must not wait for slow
	_, err := WhenAll(context.Background(), slow, failing).Result()
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestWhenAll_Cancelled(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	release := make(chan struct{})
	defer close(release)
	f := Spawn(context.Background(), pool, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	joined := WhenAll(ctx, f)
	cancel()

	vs, err := joined.Result()
	if !IsStopped(err) {
		t.Errorf("err = %v, want stopped", err)
	}
	if vs != nil {
		t.Errorf("stopped join published %v", vs)
	}
}

func TestAwait_ContextDone(t *testing.T) {
	pool := NewPool(1)
	defer pool.Close()

	release := make(chan struct{})
	defer close(release)
	f := Spawn(context.Background(), pool, func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := f.Await(ctx); !IsStopped(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want stopped wrapping DeadlineExceeded", err)
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{Succeeded: "succeeded", Failed: "failed", Cancelled: "cancelled"} {
		if o.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(o), o.String(), want)
		}
	}
}
