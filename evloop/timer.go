package evloop

import (
	"math"

	"github.com/fixkme/evkit/ds/heap"
	"github.com/fixkme/evkit/errs"
	"github.com/fixkme/evkit/mlog"
)

// TimerCallback 到期回调，在循环协程里同步执行
// 回调里可以启停任意定时器，包括自己
type TimerCallback func(*Timer)

// Timer 一次性或重复定时器，归属于一个Loop
// 字段只能在循环协程里访问；是否active以是否挂在堆上为准
type Timer struct {
	node    heap.Node
	loop    *Loop
	cb      TimerCallback
	timeout uint64 // 绝对到期时间 ms
	repeat  uint64 // 重复周期 ms，0表示一次性
	startId uint64 // 同一到期时间按启动先后触发
	closing bool
	Data    any // 用户数据
}

func (t *Timer) HeapNode() *heap.Node {
	return &t.node
}

// timerLess 先比到期时间；相同时start id小的在前，保证触发次序确定
func timerLess(a, b *Timer) bool {
	if a.timeout < b.timeout {
		return true
	}
	if b.timeout < a.timeout {
		return false
	}
	return a.startId < b.startId
}

// NewTimer 创建一个归属于loop的定时器
func NewTimer(loop *Loop) *Timer {
	t := &Timer{}
	t.Init(loop)
	return t
}

// Init 重置为未启动状态，不触碰堆
// 不能对active的定时器调用，先Stop
func (t *Timer) Init(loop *Loop) {
	t.loop = loop
	t.cb = nil
	t.timeout = 0
	t.repeat = 0
	t.closing = false
}

// Active 是否已挂入堆等待触发
func (t *Timer) Active() bool {
	return t.node.InHeap()
}

// Start 启动定时器，timeout毫秒后触发cb
// repeat非0时每次触发后以repeat为周期自动重新上弦；
// 对active的定时器再次Start等价于先Stop，以第二次的参数为准
func (t *Timer) Start(cb TimerCallback, timeout, repeat uint64) error {
	if cb == nil {
		return errs.InvalidArgument.Print("nil timer callback")
	}
	if t.closing {
		return errs.InvalidArgument.Print("timer is closing")
	}
	if t.Active() {
		t.Stop()
	}
	// 绝对到期时间，溢出时钳到最大值
	// 超大的timeout绝不能因为回绕而提前触发
	clamped := t.loop.time + timeout
	if clamped < timeout {
		clamped = math.MaxUint64
	}
	t.cb = cb
	t.timeout = clamped
	t.repeat = repeat
	t.startId = t.loop.timerCounter
	t.loop.timerCounter++
	t.loop.timers.Insert(t)
	mlog.Debugf("timer start id:%d, timeout:%d, repeat:%d", t.startId, t.timeout, t.repeat)
	return nil
}

// Stop 停止定时器，未启动时是no-op
func (t *Timer) Stop() {
	if !t.Active() {
		return
	}
	t.loop.timers.Remove(t)
}

// Again 按repeat周期重新上弦；repeat为0时是no-op
// 新的到期时间从当前缓存时间算起，不是上次的到期时间，
// 回调执行慢会让后续周期整体后移
func (t *Timer) Again() error {
	if t.cb == nil {
		return errs.InvalidArgument.Print("timer never started")
	}
	if t.repeat != 0 {
		t.Stop()
		return t.Start(t.cb, t.repeat, t.repeat)
	}
	return nil
}

// SetRepeat 设置重复周期，active时也可以调用，下次Again才生效
func (t *Timer) SetRepeat(repeat uint64) {
	t.repeat = repeat
}

func (t *Timer) Repeat() uint64 {
	return t.repeat
}

// DueIn 距离到期还有多少ms，已到期返回0
func (t *Timer) DueIn() uint64 {
	if t.loop.time >= t.timeout {
		return 0
	}
	return t.timeout - t.loop.time
}

// Close 停止并进入关闭状态，之后拒绝Start，不会再触发任何回调
func (t *Timer) Close() {
	t.Stop()
	t.closing = true
}
