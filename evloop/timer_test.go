package evloop

import (
	"errors"
	"math"
	"testing"

	"github.com/fixkme/evkit/errs"
)

// 测试直接推进缓存时间，不依赖真实时钟
func advance(l *Loop, ms uint64) {
	l.time += ms
}

func TestTimerFireOrder(t *testing.T) {
	l := NewLoop()
	var fired []int
	delays := []uint64{300, 100, 200, 50, 250}
	for i, d := range delays {
		i, d := i, d
		tm := NewTimer(l)
		if err := tm.Start(func(*Timer) { fired = append(fired, int(d)) }, d, 0); err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
	}
	advance(l, 300)
	l.RunTimers()
	want := []int{50, 100, 200, 250, 300}
	if len(fired) != len(want) {
		t.Fatalf("fired %v", fired)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("fire order %v, want %v", fired, want)
		}
	}
}

func TestTimerTieBreak(t *testing.T) {
	// 同一tick、相同timeout的A和B，先Start的先触发
	l := NewLoop()
	var fired []string
	a, b := NewTimer(l), NewTimer(l)
	a.Start(func(*Timer) { fired = append(fired, "A") }, 100, 0)
	b.Start(func(*Timer) { fired = append(fired, "B") }, 100, 0)
	advance(l, 100)
	l.RunTimers()
	if len(fired) != 2 || fired[0] != "A" || fired[1] != "B" {
		t.Fatalf("fired %v, want [A B]", fired)
	}
	if a.Active() || b.Active() {
		t.Fatalf("one-shot timers should be inactive after firing")
	}
	if l.NextTimeout() != -1 {
		t.Fatalf("NextTimeout=%d, want -1 on empty heap", l.NextTimeout())
	}
}

func TestTimerOverflowClamp(t *testing.T) {
	l := NewLoop()
	l.time = 5000 // 保证now+timeout一定回绕
	tm := NewTimer(l)
	huge := uint64(math.MaxUint64) - 10
	if err := tm.Start(func(*Timer) {}, huge, 0); err != nil {
		t.Fatal(err)
	}
	if tm.timeout != math.MaxUint64 {
		t.Fatalf("deadline=%d, want clamp to MaxUint64", tm.timeout)
	}
	if due := tm.DueIn(); due != math.MaxUint64-l.time {
		t.Fatalf("DueIn=%d", due)
	}
	if nt := l.NextTimeout(); nt != math.MaxInt32 {
		t.Fatalf("NextTimeout=%d, want saturation to MaxInt32", nt)
	}
	l.RunTimers()
	if !tm.Active() {
		t.Fatalf("clamped timer must not fire early")
	}
}

func TestTimerRestartIdempotent(t *testing.T) {
	l := NewLoop()
	tm := NewTimer(l)
	var first, second int
	tm.Start(func(*Timer) { first++ }, 100, 0)
	tm.Start(func(*Timer) { second++ }, 50, 0)
	if l.timers.Len() != 1 {
		t.Fatalf("restart must replace, heap len=%d", l.timers.Len())
	}
	advance(l, 200)
	l.RunTimers()
	if first != 0 || second != 1 {
		t.Fatalf("first=%d second=%d, want only the second start to fire", first, second)
	}
}

func TestTimerRepeatDrift(t *testing.T) {
	// repeat定时器每次从触发时刻的now重新计时
	l := NewLoop()
	tm := NewTimer(l)
	fires := 0
	tm.Start(func(x *Timer) {
		fires++
		if due := x.DueIn(); due != 50 {
			t.Fatalf("fire %d: DueIn=%d, want 50 from fire-time now", fires, due)
		}
	}, 50, 50)
	for i := 0; i < 3; i++ {
		advance(l, 50)
		l.RunTimers()
	}
	if fires != 3 {
		t.Fatalf("fires=%d, want exactly one per advance", fires)
	}
	if !tm.Active() {
		t.Fatalf("repeat timer should stay armed")
	}
}

func TestTimerRepeatDriftUnderLoad(t *testing.T) {
	// 晚触发时新周期也从本tick的now起算，不是原计划时刻+R
	l := NewLoop()
	tm := NewTimer(l)
	tm.Start(func(*Timer) {}, 50, 50)
	advance(l, 130) // 远超一个周期
	l.RunTimers()
	if due := tm.DueIn(); due != 50 {
		t.Fatalf("DueIn=%d, want 50 measured from the late fire", due)
	}
}

func TestTimerReentrantStop(t *testing.T) {
	// 回调里停掉同一轮里还没触发的定时器
	l := NewLoop()
	var fired []string
	t1, t2, t3 := NewTimer(l), NewTimer(l), NewTimer(l)
	t1.Start(func(*Timer) {
		fired = append(fired, "t1")
		t3.Stop()
	}, 10, 0)
	t2.Start(func(*Timer) { fired = append(fired, "t2") }, 20, 0)
	t3.Start(func(*Timer) { fired = append(fired, "t3") }, 30, 0)
	advance(l, 30)
	l.RunTimers()
	if len(fired) != 2 || fired[0] != "t1" || fired[1] != "t2" {
		t.Fatalf("fired %v, want [t1 t2]", fired)
	}
	if t3.Active() {
		t.Fatalf("stopped timer still active")
	}
}

func TestTimerReentrantStopSelf(t *testing.T) {
	// repeat定时器在回调里停掉自己，不影响同轮的其他定时器
	l := NewLoop()
	var fired []string
	t1, t2 := NewTimer(l), NewTimer(l)
	t1.Start(func(x *Timer) {
		fired = append(fired, "t1")
		x.Stop()
	}, 10, 10)
	t2.Start(func(*Timer) { fired = append(fired, "t2") }, 20, 0)
	advance(l, 20)
	l.RunTimers()
	if len(fired) != 2 || fired[0] != "t1" || fired[1] != "t2" {
		t.Fatalf("fired %v, want [t1 t2]", fired)
	}
	if t1.Active() {
		t.Fatalf("self-stopped repeat timer still active")
	}
}

func TestTimerReentrantStart(t *testing.T) {
	// 回调里启动的新定时器要等下一个tick，不会卷进本轮
	l := NewLoop()
	var fired []string
	t1, t2 := NewTimer(l), NewTimer(l)
	t1.Start(func(*Timer) {
		fired = append(fired, "t1")
		t2.Start(func(*Timer) { fired = append(fired, "t2") }, 5, 0)
	}, 10, 0)
	advance(l, 10)
	l.RunTimers()
	if len(fired) != 1 || fired[0] != "t1" {
		t.Fatalf("fired %v, want only t1 this tick", fired)
	}
	advance(l, 5)
	l.RunTimers()
	if len(fired) != 2 || fired[1] != "t2" {
		t.Fatalf("fired %v, want t2 on the next tick", fired)
	}
}

func TestTimerAgain(t *testing.T) {
	l := NewLoop()
	tm := NewTimer(l)
	if err := tm.Again(); !errors.Is(err, errs.InvalidArgument) {
		t.Fatalf("Again before Start: err=%v, want INVALID_ARGUMENT", err)
	}
	tm.Start(func(*Timer) {}, 100, 0)
	if err := tm.Again(); err != nil {
		t.Fatalf("Again with repeat=0 must be a no-op, got %v", err)
	}
	if !tm.Active() || tm.DueIn() != 100 {
		t.Fatalf("no-op Again must not touch the pending fire")
	}
	tm.SetRepeat(25)
	if err := tm.Again(); err != nil {
		t.Fatal(err)
	}
	if due := tm.DueIn(); due != 25 {
		t.Fatalf("DueIn=%d after Again, want 25", due)
	}
}

func TestTimerStartErrors(t *testing.T) {
	l := NewLoop()
	tm := NewTimer(l)
	if err := tm.Start(nil, 10, 0); !errors.Is(err, errs.InvalidArgument) {
		t.Fatalf("nil callback: err=%v", err)
	}
	if tm.Active() {
		t.Fatalf("failed Start must not touch the heap")
	}
	tm.Close()
	if err := tm.Start(func(*Timer) {}, 10, 0); !errors.Is(err, errs.InvalidArgument) {
		t.Fatalf("start on closing timer: err=%v", err)
	}
}

func TestTimerStopIdempotent(t *testing.T) {
	l := NewLoop()
	tm := NewTimer(l)
	tm.Stop() // 未启动
	tm.Start(func(*Timer) {}, 10, 0)
	tm.Stop()
	tm.Stop()
	if tm.Active() || l.timers.Len() != 0 {
		t.Fatalf("stop not idempotent")
	}
}

func TestTimerCloseNoCallback(t *testing.T) {
	l := NewLoop()
	fired := false
	tm := NewTimer(l)
	tm.Start(func(*Timer) { fired = true }, 10, 0)
	tm.Close()
	advance(l, 100)
	l.RunTimers()
	if fired {
		t.Fatalf("closed timer fired")
	}
}

func TestTimerSetRepeatWhileActive(t *testing.T) {
	// active时SetRepeat不影响当前这次到期
	l := NewLoop()
	tm := NewTimer(l)
	tm.Start(func(*Timer) {}, 100, 0)
	tm.SetRepeat(30)
	if tm.Repeat() != 30 {
		t.Fatalf("Repeat=%d", tm.Repeat())
	}
	if due := tm.DueIn(); due != 100 {
		t.Fatalf("DueIn=%d, SetRepeat must not move the deadline", due)
	}
	advance(l, 100)
	l.RunTimers()
	// 触发后按新repeat重新上弦
	if !tm.Active() {
		t.Fatalf("timer should be re-armed with the new repeat")
	}
	if due := tm.DueIn(); due != 30 {
		t.Fatalf("DueIn=%d, want 30", due)
	}
}

func TestEmptyLoop(t *testing.T) {
	l := NewLoop()
	if nt := l.NextTimeout(); nt != -1 {
		t.Fatalf("NextTimeout=%d on empty loop", nt)
	}
	l.RunTimers() // no-op
	if l.Alive() {
		t.Fatalf("empty loop reported alive")
	}
}

func TestNextTimeout(t *testing.T) {
	l := NewLoop()
	tm := NewTimer(l)
	tm.Start(func(*Timer) {}, 120, 0)
	if nt := l.NextTimeout(); nt != 120 {
		t.Fatalf("NextTimeout=%d, want 120", nt)
	}
	advance(l, 120)
	if nt := l.NextTimeout(); nt != 0 {
		t.Fatalf("NextTimeout=%d, want 0 when due", nt)
	}
	advance(l, 50)
	if nt := l.NextTimeout(); nt != 0 {
		t.Fatalf("NextTimeout=%d, want 0 when overdue", nt)
	}
}

func TestStartIdMonotonic(t *testing.T) {
	// 重启会拿到新的start id，丢掉原来的同deadline优先级
	l := NewLoop()
	var fired []string
	a, b := NewTimer(l), NewTimer(l)
	a.Start(func(*Timer) { fired = append(fired, "a") }, 100, 0)
	b.Start(func(*Timer) { fired = append(fired, "b") }, 100, 0)
	a.Start(func(*Timer) { fired = append(fired, "a") }, 100, 0) // a重启，排到b后面
	advance(l, 100)
	l.RunTimers()
	if len(fired) != 2 || fired[0] != "b" || fired[1] != "a" {
		t.Fatalf("fired %v, want [b a]", fired)
	}
}
