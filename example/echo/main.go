package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fixkme/evkit/config"
	"github.com/fixkme/evkit/evloop"
	"github.com/fixkme/evkit/gate"
	"github.com/fixkme/evkit/mlog"
	"github.com/panjf2000/gnet/v2"
)

// 回显服务：gnet收发，空闲连接由evloop定时器踢掉
func main() {
	configFile := flag.String("c", "", "config file path")
	flag.Parse()
	if err := config.LoadConfig(*configFile); err != nil {
		log.Fatalf("load config error: %v", err)
	}
	conf := config.Config

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	if len(conf.LogPath) != 0 {
		if err := mlog.UseDefaultLogger(ctx, wg, conf.LogPath, conf.LogName, mlog.Level(conf.LogLevel), conf.LogStdOut); err != nil {
			log.Fatalf("init logger error: %v", err)
		}
	} else {
		mlog.UseStdLogger(mlog.Level(conf.LogLevel))
	}
	mlog.Infof("starting up, config: %s", conf.JsonFormat())

	loop := evloop.NewLoop()
	srv := gate.NewServer(loop, &gate.ServerOptions{
		Options:       gnet.Options{Multicore: conf.Multicore},
		Addr:          conf.GateAddr,
		IdleTimeoutMs: conf.IdleTimeoutMs,
	})

	go func() {
		if err := srv.Run(); err != nil {
			mlog.Errorf("gate run error: %v", err)
			loop.Stop()
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		mlog.Infof("got signal %v, shutting down", s)
		if err := srv.Shutdown(context.Background()); err != nil {
			mlog.Errorf("gate shutdown error: %v", err)
		}
		loop.Stop()
	}()

	// 主协程驱动事件循环
	loop.Run(evloop.RunDefault)

	cancel()
	wg.Wait()
}
