package gate

import (
	"context"

	"github.com/fixkme/evkit/evloop"
	"github.com/fixkme/evkit/mlog"
	"github.com/panjf2000/gnet/v2"
)

const (
	defaultIdleTimeoutMs = uint64(60_000)
	sweepIntervalMs      = uint64(30_000)
)

type ServerOptions struct {
	gnet.Options
	Addr          string // 形如 "tcp://127.0.0.1:2333"
	IdleTimeoutMs uint64 // 连接空闲多久踢下线，0取默认60s
	// OnMessage 收到一条数据时回调，在loop协程里执行；nil时回显
	OnMessage func(s *Session, data []byte)
	// OnSessionClose 连接关闭时回调，在loop协程里执行
	OnSessionClose func(s *Session, err error)
}

// Server 基于gnet的接入网关
// 每个连接挂一个空闲定时器在同一个事件循环上，有流量就重新上弦，
// 到期把连接踢掉。网络回调里不直接动定时器，全部Post到循环协程
type Server struct {
	gnet.BuiltinEventEngine
	gnet.Engine
	opt      *ServerOptions
	loop     *evloop.Loop
	sessions map[string]*Session // 只在loop协程访问
	sweeper  *evloop.Timer
}

// NewServer 必须在loop开始Run之前调用
func NewServer(loop *evloop.Loop, opt *ServerOptions) *Server {
	if opt.IdleTimeoutMs == 0 {
		opt.IdleTimeoutMs = defaultIdleTimeoutMs
	}
	s := &Server{
		opt:      opt,
		loop:     loop,
		sessions: make(map[string]*Session),
	}
	// 常驻的统计定时器，也让循环在没有连接时保持存活
	s.sweeper = evloop.NewTimer(loop)
	if err := s.sweeper.Start(s.onSweep, sweepIntervalMs, sweepIntervalMs); err != nil {
		mlog.Errorf("gate: start sweeper error: %v", err)
	}
	return s
}

func (s *Server) onSweep(*evloop.Timer) {
	mlog.Debugf("gate: %d sessions online", len(s.sessions))
}

// Run 阻塞运行gnet引擎
func (s *Server) Run() error {
	return gnet.Run(s, s.opt.Addr, gnet.WithOptions(s.opt.Options))
}

// Shutdown 停掉引擎和统计定时器
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.loop.Post(func() { s.sweeper.Close() }); err != nil {
		mlog.Errorf("gate: shutdown post error: %v", err)
	}
	return s.Stop(ctx)
}

// 以下回调在gnet协程里执行

func (s *Server) OnBoot(eng gnet.Engine) (action gnet.Action) {
	s.Engine = eng
	mlog.Infof("gate: listening on %s", s.opt.Addr)
	return
}

func (s *Server) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	sess := newSession(s, c)
	c.SetContext(sess)
	if err := s.loop.Post(func() {
		s.sessions[sess.Id] = sess
		sess.touch()
	}); err != nil {
		mlog.Errorf("gate: open post error: %v", err)
		return nil, gnet.Close
	}
	mlog.Infof("gate: session %s open from %s", sess.Id, c.RemoteAddr())
	return
}

func (s *Server) OnTraffic(c gnet.Conn) (action gnet.Action) {
	sess, ok := c.Context().(*Session)
	if !ok {
		return gnet.Close
	}
	buf, err := c.Next(-1)
	if err != nil {
		return gnet.Close
	}
	// buf在OnTraffic返回后会被gnet复用
	data := make([]byte, len(buf))
	copy(data, buf)
	if err := s.loop.Post(func() {
		sess.touch()
		if s.opt.OnMessage != nil {
			s.opt.OnMessage(sess, data)
		} else if werr := sess.Send(data); werr != nil {
			mlog.Errorf("gate: echo to %s error: %v", sess.Id, werr)
		}
	}); err != nil {
		mlog.Errorf("gate: traffic post error: %v", err)
		return gnet.Close
	}
	return
}

func (s *Server) OnClose(c gnet.Conn, err error) (action gnet.Action) {
	sess, ok := c.Context().(*Session)
	if !ok {
		return
	}
	if perr := s.loop.Post(func() {
		delete(s.sessions, sess.Id)
		sess.idle.Close()
		if s.opt.OnSessionClose != nil {
			s.opt.OnSessionClose(sess, err)
		}
	}); perr != nil {
		mlog.Errorf("gate: close post error: %v", perr)
	}
	mlog.Infof("gate: session %s closed, err: %v", sess.Id, err)
	return
}
