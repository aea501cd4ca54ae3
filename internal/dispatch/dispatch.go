// Package dispatch binds the server's TCP listener, assigns each
// inbound connection a monotonically increasing request number, and
// runs it through the orchestrator either concurrently (one worker per
// request) or sequentially, per the -s flag.
package dispatch

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/traffic-mim/server/internal/mlog"
	"github.com/traffic-mim/server/internal/wire"
)

// Processor runs one request's full pipeline and returns the response
// bytes to write back; internal/orchestrator.Orchestrator implements it.
type Processor interface {
	Process(reqNo int, raw []byte) []byte
}

// Dispatcher owns the listener and the accept loop.
type Dispatcher struct {
	ln         net.Listener
	proc       Processor
	sequential bool

	reqCounter int64
	wg         sync.WaitGroup

	shutdown chan struct{}
	once     sync.Once
}

// Listen binds a TCP listener on an OS-assigned port on the local
// hostname and prints "host:port\n" to stdout, flushed immediately, so
// a parent process can forward the address to the SUT.
func Listen(proc Processor, sequential bool, stdout io.Writer) (*Dispatcher, error) {
	host, err := localHostname()
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", host+":0")
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		ln:         ln,
		proc:       proc,
		sequential: sequential,
		shutdown:   make(chan struct{}),
	}

	fmt.Fprintf(stdout, "%s\n", ln.Addr().String())
	if f, ok := stdout.(interface{ Sync() error }); ok {
		f.Sync()
	} else if f, ok := stdout.(interface{ Flush() error }); ok {
		f.Flush()
	}

	return d, nil
}

func localHostname() (string, error) {
	return "localhost", nil
}

// Serve runs the accept loop until Shutdown is called. It returns once
// every in-flight request worker has completed.
func (d *Dispatcher) Serve() {
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				d.wg.Wait()
				return
			default:
				mlog.Errorln("accept:", err)
				continue
			}
		}

		if d.sequential {
			d.handle(conn)
		} else {
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				d.handle(conn)
			}()
		}
	}
}

// handle reads exactly one request to EOF, checks for the shutdown
// sentinel, and otherwise runs it through the processor.
func (d *Dispatcher) handle(conn net.Conn) {
	defer conn.Close()

	raw, err := io.ReadAll(bufio.NewReader(conn))
	if err != nil {
		mlog.Errorln("reading request:", err)
		return
	}

	if wire.IsTerminate(raw) {
		d.Shutdown()
		return
	}

	reqNo := int(atomic.AddInt64(&d.reqCounter, 1))
	resp := d.proc.Process(reqNo, raw)
	if resp != nil {
		if _, err := conn.Write(resp); err != nil {
			mlog.Errorln("writing response:", err)
		}
	}
}

// Shutdown stops accepting new connections. In concurrent mode the
// accept loop may be blocked in Accept(); shutdown is signaled by both
// closing the listener and, as a belt-and-braces measure matching the
// design's self-connect trick, dialing the listener once with the
// terminate sentinel so a blocked Accept() wakes immediately even on
// platforms where closing a listener doesn't unblock a pending Accept.
func (d *Dispatcher) Shutdown() {
	d.once.Do(func() {
		close(d.shutdown)
		addr := d.ln.Addr().String()
		if conn, err := net.Dial("tcp", addr); err == nil {
			conn.Write([]byte(wire.TerminateSentinel))
			conn.Close()
		}
		d.ln.Close()
	})
}

// Addr returns the bound listener address.
func (d *Dispatcher) Addr() net.Addr { return d.ln.Addr() }
