package mlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	maxLogFileSize = int64(100 * 1024 * 1024)
	checkInterval  = 30 * time.Second
)

// 异步文件日志，写满100MB滚动一次
type loggerImp struct {
	file   *os.File
	ll     *log.Logger
	buff   chan string
	level  Level
	stdOut bool
}

func newDefaultLogger(logpath, logName string, level Level, stdOut bool) (*loggerImp, error) {
	if len(logpath) == 0 {
		logpath = "."
	}
	if err := os.MkdirAll(logpath, 0755); err != nil {
		return nil, err
	}
	fullpath := filepath.Join(logpath, logName+".log")
	logfile, err := os.OpenFile(fullpath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	if stdOut {
		log.SetFlags(log.Ldate | log.Lmicroseconds)
	}
	return &loggerImp{
		file:   logfile,
		ll:     log.New(logfile, "", log.Ldate|log.Lmicroseconds),
		buff:   make(chan string, 0x10000),
		level:  level,
		stdOut: stdOut,
	}, nil
}

func (me *loggerImp) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("mlog recover error %v\n", r)
			}
			me.file.Close()
			wg.Done()
		}()
		ticker := time.NewTicker(checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				// 退出前写完缓冲
				for {
					select {
					case str := <-me.buff:
						me.write(str)
					default:
						return
					}
				}
			case str := <-me.buff:
				me.write(str)
			case <-ticker.C:
				me.rotateIfNeeded()
			}
		}
	}()
}

func (me *loggerImp) write(str string) {
	if me.stdOut {
		log.Println(str)
	}
	me.ll.Println(str)
}

func (me *loggerImp) rotateIfNeeded() {
	st, err := me.file.Stat()
	if err != nil {
		log.Println("mlog stat error", err)
		return
	}
	if st.Size() <= maxLogFileSize {
		return
	}
	name := me.file.Name()
	backup := fmt.Sprintf("%s.%s", name, time.Now().Format("20060102150405"))
	if err := os.Rename(name, backup); err != nil {
		log.Println("mlog rotate error", err)
		return
	}
	file, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Println("mlog reopen error", err)
		return
	}
	me.ll.SetOutput(file)
	me.file.Close()
	me.file = file
}

func (me *loggerImp) IsLevelEnabled(level Level) bool {
	return me.level >= level
}

func (me *loggerImp) Log(level Level, args ...any) {
	if me.IsLevelEnabled(level) {
		me.buff <- (getLevelTag(level) + fmt.Sprint(args...))
		if level == FatalLevel {
			time.Sleep(time.Second)
			os.Exit(1)
		}
	}
}

func (me *loggerImp) Logf(level Level, format string, args ...any) {
	if me.IsLevelEnabled(level) {
		me.buff <- (getLevelTag(level) + fmt.Sprintf(format, args...))
		if level == FatalLevel {
			time.Sleep(time.Second)
			os.Exit(1)
		}
	}
}
