package locate

import (
	"bufio"
	"context"
	"net"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
)

// NMEAProvider reads RMC sentences from a TCP GPS feed (gpsd in raw NMEA
// mode, or a serial-to-TCP bridge) and exposes them through the Provider
// contract. Dial failure means the capability is absent on this host.
type NMEAProvider struct {
	addr string
	dial func(ctx context.Context, addr string) (net.Conn, error)
}

func NewNMEAProvider(addr string) *NMEAProvider {
	return &NMEAProvider{addr: addr, dial: dialTCP}
}

func dialTCP(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

// Current dials the feed and returns the first valid fix, bounded by the
// request timeout.
func (p *NMEAProvider) Current(ctx context.Context, opts Options) (Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.EffectiveTimeout())
	defer cancel()

	conn, err := p.dial(ctx, p.addr)
	if err != nil {
		return Reading{}, &Error{Kind: KindUnsupported, Message: "gps feed unreachable: " + err.Error()}
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if r, ok := readingFromLine(scanner.Text()); ok {
			return r, nil
		}
	}
	if err := scanner.Err(); err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return Reading{}, &Error{Kind: KindTimeout, Message: "no gps fix within timeout"}
		}
		return Reading{}, &Error{Kind: KindPositionUnavailable, Message: "gps feed error: " + err.Error()}
	}
	return Reading{}, &Error{Kind: KindPositionUnavailable, Message: "gps feed closed before a fix"}
}

// Watch dials the feed and pumps fixes until the subscription is cancelled.
func (p *NMEAProvider) Watch(opts Options) (*Subscription, error) {
	dialCtx, cancel := context.WithTimeout(context.Background(), opts.EffectiveTimeout())
	defer cancel()

	conn, err := p.dial(dialCtx, p.addr)
	if err != nil {
		return nil, &Error{Kind: KindUnsupported, Message: "gps feed unreachable: " + err.Error()}
	}

	sub := NewSubscription(func() { _ = conn.Close() })
	go pumpNMEA(conn, sub)
	return sub, nil
}

func pumpNMEA(conn net.Conn, sub *Subscription) {
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}
		sentence, err := nmea.Parse(line)
		if err != nil {
			// noisy feeds interleave partial sentences; skip them
			continue
		}
		rmc, ok := sentence.(nmea.RMC)
		if !ok {
			continue
		}
		if rmc.Validity != nmea.ValidRMC {
			sub.PublishError(&Error{Kind: KindPositionUnavailable, Message: "gps reports no fix"})
			continue
		}
		sub.Publish(Reading{Lat: rmc.Latitude, Lng: rmc.Longitude, Time: time.Now()})
	}
	if err := scanner.Err(); err != nil {
		sub.PublishError(&Error{Kind: KindPositionUnavailable, Message: "gps feed error: " + err.Error()})
	}
}

func readingFromLine(line string) (Reading, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return Reading{}, false
	}
	sentence, err := nmea.Parse(line)
	if err != nil {
		return Reading{}, false
	}
	rmc, ok := sentence.(nmea.RMC)
	if !ok || rmc.Validity != nmea.ValidRMC {
		return Reading{}, false
	}
	return Reading{Lat: rmc.Latitude, Lng: rmc.Longitude, Time: time.Now()}, true
}
