package traceengine

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jaintle/tracepath/pkg/trace"
)

// Listener consumes a hop stream over a websocket and feeds the session.
// Connection loss reconnects with capped exponential backoff; a reconnect is
// treated as a fresh trace because the streamer replays nothing.
type Listener struct {
	URL string

	OnStart func(target string)
	OnHop   func(trace.Hop)
	OnEnd   func()
}

// Listen blocks until ctx is cancelled.
func (l *Listener) Listen(ctx context.Context) {
	backoff := 1 * time.Second
	for ctx.Err() == nil {
		log.Printf("Connecting to hop stream: %s", l.URL)
		c, _, err := websocket.DefaultDialer.DialContext(ctx, l.URL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Dial error: %v. Retrying in %v...", err, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}
			backoff *= 2
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			continue
		}
		backoff = 1 * time.Second

		// Unblock ReadMessage when the context is torn down.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				c.Close()
			case <-done:
			}
		}()

		l.readLoop(c)
		close(done)
		c.Close()

		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return
		}
	}
}

func (l *Listener) readLoop(c *websocket.Conn) {
	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			log.Printf("Read error: %v. Reconnecting...", err)
			return
		}
		var msg trace.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Warning: skipping malformed stream record: %v", err)
			continue
		}
		switch msg.Type {
		case trace.MsgStart:
			if l.OnStart != nil {
				l.OnStart(msg.Target)
			}
		case trace.MsgHop:
			if msg.Hop == nil {
				log.Printf("Warning: hop record without hop payload, skipping")
				continue
			}
			if l.OnHop != nil {
				l.OnHop(*msg.Hop)
			}
		case trace.MsgEnd:
			if l.OnEnd != nil {
				l.OnEnd()
			}
		case trace.MsgError:
			log.Printf("[STREAM ERROR] %s", msg.Error)
		default:
			log.Printf("Warning: unknown stream record type %q, skipping", msg.Type)
		}
	}
}
