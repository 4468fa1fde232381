package ds

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/frcnet/godriverstation/internal/netio"
)

// dateTagEpochYear is the epoch DateTimeTag.Year counts from, matching
// the wire convention's struct-tm-style "years since 1900" field.
const dateTagEpochYear = 1900

// TickInterval is the fixed UDP control cadence (50 Hz).
const TickInterval = 20 * time.Millisecond

// udpEngine drives the 20ms control/status cadence: compose and send a
// control datagram every tick, then non-blockingly drain any status
// datagrams that have arrived since the last tick.
type udpEngine struct {
	sender   *netio.ControlSender
	listener *netio.StatusListener
	logger   *slog.Logger
	metrics  Metrics

	mu        *sync.Mutex
	sendState *SendState
	recvState *RecvState

	done chan struct{}
	wg   sync.WaitGroup
}

func newUDPEngine(sender *netio.ControlSender, listener *netio.StatusListener, mu *sync.Mutex, send *SendState, recv *RecvState, logger *slog.Logger, metrics Metrics) *udpEngine {
	return &udpEngine{
		sender:    sender,
		listener:  listener,
		logger:    logger,
		metrics:   metrics,
		mu:        mu,
		sendState: send,
		recvState: recv,
		done:      make(chan struct{}),
	}
}

func (e *udpEngine) start(ctx context.Context) {
	e.wg.Add(1)
	go e.run(ctx)
}

func (e *udpEngine) stop() {
	close(e.done)
	e.wg.Wait()
}

// run is the tick loop. Ticks are phase-based via time.Timer.Reset: if
// a tick's work overruns the 20ms budget, the next fire is immediate
// rather than attempting to catch up past it.
func (e *udpEngine) run(ctx context.Context) {
	defer e.wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	timer := time.NewTimer(TickInterval)
	defer timer.Stop()
	next := time.Now().Add(TickInterval)

	bufp := PacketPool.Get().(*[]byte)
	defer PacketPool.Put(bufp)
	recvBuf := make([]byte, MaxControlPacketSize)

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.done:
			return
		case <-timer.C:
			e.tick(*bufp, recvBuf)
			next = next.Add(TickInterval)
			wait := time.Until(next)
			if wait < 0 {
				wait = 0
				next = time.Now()
			}
			timer.Reset(wait)
		}
	}
}

func (e *udpEngine) tick(sendBuf, recvBuf []byte) {
	// JoystickTags invokes caller-supplied code that may itself call
	// back into a facade mutator (SetMode, Enable, ...); it must run
	// with the state lock released or such a supplier would deadlock
	// this goroutine against itself.
	joystickTags := e.sendState.JoystickTags()

	e.mu.Lock()
	pkt := e.sendState.Control(joystickTags)
	e.mu.Unlock()

	n, err := MarshalControlPacket(&pkt, sendBuf)
	if err != nil {
		e.logger.Error("marshal control packet failed", slog.String("error", err.Error()))
	} else if err := e.sender.Send(sendBuf[:n]); err != nil {
		e.logger.Warn("send control packet failed", slog.String("error", err.Error()))
	} else {
		e.mu.Lock()
		e.sendState.IncrementSeqnum()
		e.mu.Unlock()
		e.metrics.IncControlPacketsSent()
	}

	e.drainInbound(recvBuf)
}

// drainInbound reads every pending status datagram without blocking,
// updating recv-state on each successfully decoded packet. A decode
// failure is logged and the datagram discarded; it never stalls or
// poisons the engine.
func (e *udpEngine) drainInbound(buf []byte) {
	for {
		n, ok, err := e.listener.RecvNonBlocking(buf)
		if err != nil {
			e.logger.Warn("status socket read failed", slog.String("error", err.Error()))
			return
		}
		if !ok {
			return
		}

		status, err := DecodeStatusPacket(buf[:n])
		if err != nil {
			e.logger.Error("decode status packet failed", slog.String("error", err.Error()))
			e.metrics.IncStatusDecodeErrors()
			continue
		}

		e.mu.Lock()
		hadNeedDate := e.recvState.NeedDate()
		e.recvState.Update(status)
		// Queue the date/timezone reply only on the rising edge of
		// need_date: once per assertion, not every tick it stays set,
		// so it doesn't compete with other queued tags on every cycle.
		if status.NeedDate && !hadNeedDate {
			e.queueDateTimeTags()
		}
		e.mu.Unlock()

		e.metrics.IncStatusPacketsReceived()
		e.metrics.RecordBatteryVoltage(status.Battery)
		e.metrics.RecordCodeStarted(status.IsCodeStarted())
	}
}

// queueDateTimeTags queues a DateTime tag (system clock, local time) and
// a Timezone tag (local zone name) for the next control tick. Called
// with the state lock already held.
func (e *udpEngine) queueDateTimeTags() {
	now := time.Now()
	zoneName, _ := now.Zone()

	e.sendState.QueueUDP(DateTimeTag{
		Micros:  uint32(now.Nanosecond() / 1000),
		Seconds: uint8(now.Second()),
		Minutes: uint8(now.Minute()),
		Hours:   uint8(now.Hour()),
		Day:     uint8(now.Day()),
		Month:   uint8(now.Month() - 1),
		Year:    uint8(now.Year() - dateTagEpochYear),
	})
	e.sendState.QueueUDP(TimezoneTag{Name: zoneName})
}
