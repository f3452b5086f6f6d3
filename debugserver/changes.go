// Copyright © 2016, The T Authors.

package debugserver

import (
	"net/http"

	"github.com/neilbrown/edlib-sub004/doc"
	"github.com/neilbrown/edlib-sub004/websocket"
)

// changes upgrades the request to a websocket and streams one
// JSON-encoded doc.Change per message for every Replaced event the
// Store's Doc reports, until the peer disconnects. It mirrors
// editor.ChangeStream's client-side Next loop, but as the
// publishing half: Recv is still called continually (with a nil
// destination, since the client never sends anything of interest)
// so the connection keeps answering ping/pong, per websocket.Conn's
// contract.
func (s *Server) changes(w http.ResponseWriter, req *http.Request) {
	conn, err := websocket.Upgrade(w, req)
	if err != nil {
		return
	}
	defer conn.Close()

	pending := make(chan doc.Change, 16)
	cancel := s.store.Doc().Subscribe(doc.Replaced, func(payload interface{}) {
		c, ok := payload.(doc.Change)
		if !ok {
			return
		}
		select {
		case pending <- c:
		default:
			// Slow reader: drop rather than block the Doc's notifier.
		}
	})
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for conn.Recv(nil) == nil {
		}
	}()

	for {
		select {
		case c := <-pending:
			if conn.Send(c) != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
