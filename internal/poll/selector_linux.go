//go:build linux

package poll

import (
	"math"
	"os"
	"time"

	"golang.org/x/sys/unix"

	pcerr "pollcat/internal/errors"
)

// epollSelector watches registered descriptors level-triggered.  A
// non-blocking pipe, registered under its own read end, carries Wake.
type epollSelector struct {
	epfd  int
	wakeR int
	wakeW int
	raw   []unix.EpollEvent
}

func newSelector() (selector, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, &pcerr.InitError{Backend: "epoll", Err: os.NewSyscallError("epoll_create1", err)}
	}
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		unix.Close(epfd)
		return nil, &pcerr.InitError{Backend: "epoll", Err: os.NewSyscallError("pipe2", err)}
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(p[0])}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, p[0], &ev); err != nil {
		unix.Close(p[0])
		unix.Close(p[1])
		unix.Close(epfd)
		return nil, &pcerr.InitError{Backend: "epoll", Err: os.NewSyscallError("epoll_ctl", err)}
	}
	return &epollSelector{epfd: epfd, wakeR: p[0], wakeW: p[1]}, nil
}

func (s *epollSelector) name() string { return "epoll" }

// toEpoll maps interest to an epoll mask.  EPOLLERR and EPOLLHUP are
// always reported by the kernel; peer half-close needs EPOLLRDHUP.
func toEpoll(k EventKind) uint32 {
	var ev uint32
	if k.IsReadable() {
		ev |= unix.EPOLLIN | unix.EPOLLPRI
	}
	if k.IsWritable() {
		ev |= unix.EPOLLOUT
	}
	if k.IsError() {
		ev |= unix.EPOLLRDHUP
	}
	return ev
}

func fromEpoll(ev uint32) EventKind {
	var k EventKind
	if ev&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
		k |= Readable
	}
	if ev&unix.EPOLLOUT != 0 {
		k |= Writable
	}
	if ev&(unix.EPOLLERR|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		k |= Error
	}
	return k
}

func (s *epollSelector) ctl(op, fd int, interest EventKind) error {
	ev := unix.EpollEvent{Events: toEpoll(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(s.epfd, op, fd, &ev); err != nil {
		return os.NewSyscallError("epoll_ctl", err)
	}
	return nil
}

func (s *epollSelector) add(fd int, interest EventKind) error {
	return s.ctl(unix.EPOLL_CTL_ADD, fd, interest)
}

func (s *epollSelector) modify(fd int, interest EventKind) error {
	return s.ctl(unix.EPOLL_CTL_MOD, fd, interest)
}

func (s *epollSelector) remove(fd int) error {
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return os.NewSyscallError("epoll_ctl", err)
	}
	return nil
}

// maxWait is the longest bounded wait epoll_wait accepts, in ms.
const maxWait = time.Duration(math.MaxInt32) * time.Millisecond

// waitMillis rounds up so that a sub-millisecond timeout still blocks
// instead of spinning.  Bounded waits beyond maxWait are clamped to it
// and never become an unbounded -1.
func waitMillis(timeout time.Duration) int {
	if timeout < 0 {
		return -1
	}
	if timeout >= maxWait {
		return math.MaxInt32
	}
	return int((timeout + time.Millisecond - 1) / time.Millisecond)
}

func (s *epollSelector) wait(out []readiness, timeout time.Duration) (int, bool, error) {
	// one extra slot for the wake pipe
	if len(s.raw) < len(out)+1 {
		s.raw = make([]unix.EpollEvent, len(out)+1)
	}
	n, err := unix.EpollWait(s.epfd, s.raw[:len(out)+1], waitMillis(timeout))
	if err != nil {
		if err == unix.EINTR {
			return 0, false, pcerr.ErrInterrupted
		}
		return 0, false, os.NewSyscallError("epoll_wait", err)
	}

	var (
		filled int
		woken  bool
	)
	for i := 0; i < n; i++ {
		ev := s.raw[i]
		fd := int(ev.Fd)
		if fd == s.wakeR {
			woken = true
			s.drainWake()
			continue
		}
		if filled == len(out) {
			break
		}
		out[filled] = readiness{fd: fd, kind: fromEpoll(ev.Events)}
		filled++
	}
	return filled, woken, nil
}

func (s *epollSelector) drainWake() {
	var buf [64]byte
	for {
		n, err := unix.Read(s.wakeR, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func (s *epollSelector) wake() error {
	_, err := unix.Write(s.wakeW, []byte{1})
	if err != nil && err != unix.EAGAIN {
		return os.NewSyscallError("write", err)
	}
	return nil
}

func (s *epollSelector) close() error {
	unix.Close(s.wakeR)
	unix.Close(s.wakeW)
	if err := unix.Close(s.epfd); err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}
