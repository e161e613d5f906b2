// Package push owns a long-lived server push subscription (Server-Sent
// Events over http/https, or WebSocket over ws/wss) and demultiplexes its
// frames by name.
//
// A Client holds at most one live subscription. Subscribing again disposes
// the previous one first, and the returned Disposer tears the connection
// down synchronously:
//
//	mux := push.NewMux()
//	mux.HandleAudit(func(e audit.Event) { ring.Append(e) })
//	c := push.NewClient(push.WithLogger(logger))
//	dispose := c.Subscribe("http://localhost:8000/events/stream", mux.Dispatch)
//	defer dispose()
//
// Reconnection follows the transport rule only: a fixed delay, replaced by a
// frame's retry field, with the last event id resent. Malformed frames are
// dropped and counted; they never close the channel.
package push
