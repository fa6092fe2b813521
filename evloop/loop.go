package evloop

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/fixkme/evkit/ds/heap"
	"github.com/fixkme/evkit/errs"
	gtime "github.com/fixkme/evkit/util/time"
)

type RunMode int

const (
	RunDefault RunMode = iota // 一直跑到没有存活的定时器和任务，或被Stop
	RunOnce                   // 阻塞等待并处理一轮
	RunNowait                 // 处理当前已到期的，不阻塞
)

// Loop 单线程事件循环
// 除Post和Stop外，所有方法只能在驱动循环的协程里调用
type Loop struct {
	time         uint64 // 缓存的单调时钟 ms，每个tick刷新一次
	timers       *heap.Heap[*Timer]
	timerCounter uint64 // 分配start id
	taskch       chan func()
	stopFlag     atomic.Bool
}

func NewLoop() *Loop {
	l := &Loop{
		taskch: make(chan func(), 1024),
	}
	l.timers = heap.NewHeap(timerLess)
	l.time = gtime.MonoMs()
	return l
}

// Now 缓存的当前时间 ms
// 一个tick内保持不变，到期判定都以它为准
func (l *Loop) Now() uint64 {
	return l.time
}

// UpdateTime 刷新缓存时间，每个tick开始时调用一次
func (l *Loop) UpdateTime() {
	l.time = gtime.MonoMs()
}

// Alive 是否还有存活的定时器或未处理的任务
func (l *Loop) Alive() bool {
	return l.timers.Len() > 0 || len(l.taskch) > 0
}

// Post 向循环投递一个任务，唯一允许跨协程调用的写入口
// 任务在循环协程里按投递顺序执行
func (l *Loop) Post(fn func()) error {
	select {
	case l.taskch <- fn:
		return nil
	default:
		return errs.Busy.Print("loop task queue full")
	}
}

// Stop 请求循环退出，可跨协程调用
func (l *Loop) Stop() {
	l.stopFlag.Store(true)
	// 唤醒可能阻塞在poll里的循环
	select {
	case l.taskch <- func() {}:
	default:
	}
}

// NextTimeout 下一次I/O等待允许阻塞的时长 ms
// 返回-1表示没有定时器，可以无限阻塞；0表示已有到期的，不要阻塞
func (l *Loop) NextTimeout() int64 {
	t, ok := l.timers.Min()
	if !ok {
		return -1
	}
	if t.timeout <= l.time {
		return 0
	}
	diff := t.timeout - l.time
	if diff > math.MaxInt32 {
		diff = math.MaxInt32
	}
	return int64(diff)
}

// RunTimers 触发所有到期的定时器
// 每轮都重新取堆顶，回调里对任意定时器的启停都会被下一轮看到；
// 到期判定用本tick缓存的时间，扫描过程中不会把新到期的也卷进来
func (l *Loop) RunTimers() {
	for {
		t, ok := l.timers.Min()
		if !ok || t.timeout > l.time {
			break
		}
		// 先摘下并重新上弦，后执行回调
		// 回调里看到的自己要么已经按repeat重新挂入，要么完全停止
		t.Stop()
		t.Again()
		t.cb(t)
	}
}

func (l *Loop) runTasks() {
	for {
		select {
		case fn := <-l.taskch:
			fn()
		default:
			return
		}
	}
}

// poll 阻塞等待投递任务或下一个定时器到期
func (l *Loop) poll(timeoutMs int64) {
	if timeoutMs == 0 {
		return
	}
	if timeoutMs < 0 {
		fn := <-l.taskch
		fn()
		return
	}
	tm := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer tm.Stop()
	select {
	case fn := <-l.taskch:
		fn()
	case <-tm.C:
	}
}

// Run 驱动循环
// RunDefault一直跑到Alive为false或者被Stop；RunOnce等待并处理一轮；
// RunNowait只处理当前已到期的定时器和已投递的任务
func (l *Loop) Run(mode RunMode) {
	for !l.stopFlag.Load() {
		l.UpdateTime()
		l.RunTimers()
		l.runTasks()
		if mode == RunNowait || !l.Alive() {
			break
		}
		l.poll(l.NextTimeout())
		if mode == RunOnce {
			l.UpdateTime()
			l.RunTimers()
			break
		}
	}
	l.stopFlag.Store(false)
}
