package gate

import (
	"net"

	"github.com/fixkme/evkit/evloop"
	"github.com/fixkme/evkit/mlog"
	"github.com/panjf2000/gnet/v2"
	"github.com/rs/xid"
)

type Session struct {
	Id   string
	Data any // 上层业务数据，只在loop协程访问
	c    gnet.Conn
	srv  *Server
	idle *evloop.Timer
}

func newSession(srv *Server, c gnet.Conn) *Session {
	return &Session{
		Id:   xid.New().String(),
		c:    c,
		srv:  srv,
		idle: evloop.NewTimer(srv.loop),
	}
}

func (s *Session) RemoteAddr() net.Addr {
	return s.c.RemoteAddr()
}

// Send 异步写，任意协程可调用
func (s *Session) Send(data []byte) error {
	return s.c.AsyncWrite(data, nil)
}

// Kick 主动断开连接
func (s *Session) Kick() error {
	return s.c.Close()
}

// touch 重新上弦空闲定时器，只在loop协程调用
// 对active定时器的Start就是重启，天然覆盖上一次的到期时间
func (s *Session) touch() {
	err := s.idle.Start(s.onIdle, s.srv.opt.IdleTimeoutMs, 0)
	if err != nil {
		mlog.Errorf("gate: arm idle timer for %s error: %v", s.Id, err)
	}
}

func (s *Session) onIdle(*evloop.Timer) {
	mlog.Infof("gate: kick idle session %s", s.Id)
	if err := s.Kick(); err != nil {
		mlog.Errorf("gate: kick %s error: %v", s.Id, err)
	}
}
