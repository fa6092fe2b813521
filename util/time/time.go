package time

import "time"

const (
	SecMs  = 1000
	MinMs  = 60 * SecMs
	HourMs = 60 * MinMs
	DayMs  = 24 * HourMs
)

const TimeFormat = "2006-01-02T15:04:05.000Z"

var monoStart = time.Now()

// NowMs 当前UTC毫秒时间戳
func NowMs() int64 {
	return time.Now().UnixMilli()
}

// MonoMs 单调时钟毫秒数，从进程启动算起
// 不受系统时间调整影响，事件循环的缓存时间用它
func MonoMs() uint64 {
	return uint64(time.Since(monoStart) / time.Millisecond)
}

// Ms2Time ms时间戳转化为时间
func Ms2Time(ms int64) time.Time {
	return time.UnixMilli(ms)
}
