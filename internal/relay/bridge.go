package relay

import (
	stderrors "errors"
	"io"
	"time"

	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/logger"
)

// DefaultPollInterval is the idle sleep between relay poll iterations.
const DefaultPollInterval = 10 * time.Millisecond

// Flusher is implemented by local outputs that buffer writes. Remote
// output is flushed after every write; output latency is directly
// perceived by the person at the terminal.
type Flusher interface {
	Flush() error
}

// Bridge is the concurrent byte relay between the local terminal and the
// remote channel. One background goroutine blocks on local-input reads
// and queues chunks; the foreground Run loop drains the queue to the
// remote and polls the remote for output. Bytes within one direction keep
// their order; nothing is guaranteed between directions.
type Bridge struct {
	local  io.Reader
	output io.Writer
	remote Channel

	pollInterval time.Duration
	queue        *chunkQueue
	log          logger.Logger
}

// NewBridge creates a bridge relaying between local input/output and the
// remote channel.
func NewBridge(local io.Reader, output io.Writer, remote Channel) *Bridge {
	return &Bridge{
		local:        local,
		output:       output,
		remote:       remote,
		pollInterval: DefaultPollInterval,
		queue:        newChunkQueue(),
		log:          logger.Default(),
	}
}

// SetPollInterval overrides the idle sleep between poll iterations.
func (b *Bridge) SetPollInterval(d time.Duration) {
	b.pollInterval = d
}

// SetLogger overrides the bridge's logger.
func (b *Bridge) SetLogger(l logger.Logger) {
	b.log = l
}

// Run relays until the remote closes, the remote read hard-fails, or a
// local write hard-fails. A graceful remote close returns nil; everything
// else returns a RELAY error. Run never blocks indefinitely: every I/O
// operation in the loop is non-blocking, with a short idle sleep between
// iterations.
func (b *Bridge) Run() error {
	b.startReader()

	buf := make([]byte, 4096)
	for {
		if err := b.drainLocalInput(); err != nil {
			return err
		}

		n, err := b.remote.TryRead(buf)
		switch {
		case n > 0:
			if _, werr := b.output.Write(buf[:n]); werr != nil {
				return errors.WrapWithCode(werr, errors.ErrRelay,
					"Writing to the local terminal failed mid-session", "")
			}
			if f, ok := b.output.(Flusher); ok {
				if ferr := f.Flush(); ferr != nil {
					return errors.WrapWithCode(ferr, errors.ErrRelay,
						"Flushing the local terminal failed mid-session", "")
				}
			}
			// Keep draining while output is flowing.
			continue
		case err == nil || stderrors.Is(err, io.EOF):
			// A zero-byte read means the remote closed gracefully.
			b.log.Debug("relay: remote closed")
			return nil
		case stderrors.Is(err, ErrWouldBlock):
			// Nothing pending right now.
		default:
			return errors.WrapWithCode(err, errors.ErrRelay,
				"Reading from the remote channel failed mid-session",
				"The connection may have dropped.")
		}

		time.Sleep(b.pollInterval)
	}
}

// startReader launches the background local-input reader. It blocks on
// reads and queues each chunk in arrival order. There is no cancellation
// signal: the goroutine exits only when local input reaches EOF or
// hard-fails, so it can outlive the relay loop until the process exits.
func (b *Bridge) startReader() {
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := b.local.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				b.queue.Push(chunk)
			}
			if err != nil {
				b.log.Debug("relay: local input closed: %v", err)
				return
			}
		}
	}()
}

// drainLocalInput writes queued input chunks to the remote in arrival
// order. A would-block result stops the drain attempt but not the loop;
// a hard write error ends the session.
func (b *Bridge) drainLocalInput() error {
	for {
		chunk, ok := b.queue.Peek()
		if !ok {
			return nil
		}

		n, err := b.remote.Write(chunk)
		if stderrors.Is(err, ErrWouldBlock) {
			if n > 0 {
				b.queue.TrimFront(n)
			}
			return nil
		}
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrRelay,
				"Writing to the remote channel failed mid-session",
				"The connection may have dropped.")
		}
		if n < len(chunk) {
			b.queue.TrimFront(n)
			continue
		}
		b.queue.Drop()
	}
}
