package ds

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/frcnet/godriverstation/internal/netio"
)

// tcpReconnectBackoff is how long the engine waits before retrying a
// failed or dropped connection.
const tcpReconnectBackoff = 500 * time.Millisecond

// tcpDialTimeout bounds a single connection attempt.
const tcpDialTimeout = 2 * time.Second

// tcpPollInterval bounds how often the outbound tag queue is polled
// while connected; never slower than the UDP tick cadence.
const tcpPollInterval = TickInterval

// tcpEngine maintains the long-lived event channel: reconnecting with
// backoff, draining queued outbound tags, and greedily decoding
// inbound frames into the consumer callback.
type tcpEngine struct {
	addr    netip.AddrPort
	logger  *slog.Logger
	metrics Metrics

	mu        *sync.Mutex
	sendState *SendState

	consumer callbackSlot[TCPConsumer]

	done chan struct{}
	wg   sync.WaitGroup
}

func newTCPEngine(addr netip.AddrPort, mu *sync.Mutex, send *SendState, logger *slog.Logger, metrics Metrics) *tcpEngine {
	return &tcpEngine{
		addr:      addr,
		logger:    logger,
		metrics:   metrics,
		mu:        mu,
		sendState: send,
		done:      make(chan struct{}),
	}
}

func (e *tcpEngine) setConsumer(c TCPConsumer) {
	e.consumer.set(c)
}

func (e *tcpEngine) start(ctx context.Context) {
	e.wg.Add(1)
	go e.run(ctx)
}

func (e *tcpEngine) stop() {
	close(e.done)
	e.wg.Wait()
}

func (e *tcpEngine) run(ctx context.Context) {
	defer e.wg.Done()

	// firstConnect tracks whether the next successful dial is the
	// engine's initial connection or an actual reconnect, so the
	// reconnect counter reflects dropped-and-reestablished sessions
	// rather than every dial attempt (failed or not).
	firstConnect := true

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		default:
		}

		conn, err := netio.DialControlTCP(ctx, e.addr, tcpDialTimeout)
		if err != nil {
			e.logger.Warn("tcp dial failed", slog.String("error", err.Error()))
			if !e.sleepBackoff(ctx) {
				return
			}
			continue
		}

		if !firstConnect {
			e.metrics.IncTCPReconnects()
		}
		firstConnect = false

		e.logger.Info("tcp session established", slog.String("addr", e.addr.String()))
		e.serve(ctx, conn)
		conn.Close()

		if !e.sleepBackoff(ctx) {
			return
		}
	}
}

func (e *tcpEngine) sleepBackoff(ctx context.Context) bool {
	timer := time.NewTimer(tcpReconnectBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-e.done:
		return false
	case <-timer.C:
		return true
	}
}

// serve drives one connection until it's dropped or the engine is
// asked to stop: a reader goroutine feeds inbound bytes into a
// growing buffer that's decoded greedily; the caller's goroutine
// polls the outbound tag queue on tcpPollInterval.
func (e *tcpEngine) serve(ctx context.Context, conn net.Conn) {
	readErrCh := make(chan error, 1)
	frameCh := make(chan []byte, 64)

	go e.readLoop(conn, frameCh, readErrCh)

	ticker := time.NewTicker(tcpPollInterval)
	defer ticker.Stop()

	var buffer []byte

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		case err := <-readErrCh:
			if err != nil && !errors.Is(err, io.EOF) {
				e.logger.Warn("tcp read failed", slog.String("error", err.Error()))
			}
			return
		case chunk := <-frameCh:
			buffer = append(buffer, chunk...)
			buffer = e.decodeFrames(buffer)
		case <-ticker.C:
			if err := e.drainOutbound(conn); err != nil {
				return
			}
		}
	}
}

// decodeFrames extracts every complete frame currently in buffer,
// dispatching each to the consumer callback, and returns the
// remaining (possibly partial) tail.
func (e *tcpEngine) decodeFrames(buffer []byte) []byte {
	for {
		id, payload, consumed, ok, err := DecodeTCPFrame(buffer)
		if err != nil {
			// A malformed frame carries no reliable resync point (no
			// delimiter to scan for), so the rest of the buffer is
			// dropped rather than risk misparsing a corrupt length
			// prefix as a valid one. Already-dispatched frames earlier
			// in this same buffer are unaffected.
			e.logger.Error("tcp frame decode failed, discarding buffered bytes",
				slog.String("error", err.Error()), slog.Int("discarded_bytes", len(buffer)))
			return nil
		}
		if !ok {
			return buffer
		}

		event := decodeInboundTCPTag(id, payload)
		e.metrics.IncTCPFramesReceived()
		if consumer, has := e.consumer.get(); has && consumer != nil {
			consumer(event)
		}

		buffer = buffer[consumed:]
	}
}

func (e *tcpEngine) drainOutbound(conn net.Conn) error {
	e.mu.Lock()
	tags := e.sendState.DrainTCP()
	e.mu.Unlock()

	for _, tag := range tags {
		if _, err := conn.Write(EncodeTCPFrame(tag)); err != nil {
			e.logger.Warn("tcp write failed", slog.String("error", err.Error()))
			return err
		}
	}
	return nil
}

func (e *tcpEngine) readLoop(conn net.Conn, frameCh chan<- []byte, errCh chan<- error) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case frameCh <- chunk:
			case <-e.done:
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}
