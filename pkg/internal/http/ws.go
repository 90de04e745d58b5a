package http

import (
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/pollroom/server/pkg/internal/pusher"
)

// mapWebsocket exposes the live-results channel. A viewer subscribes to one
// poll per connection and only ever receives; inbound frames are drained
// solely to notice the peer going away.
func mapWebsocket(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/polls/:pollId", websocket.New(func(conn *websocket.Conn) {
		pollID, err := strconv.ParseUint(conn.Params("pollId"), 10, 32)
		if err != nil {
			_ = conn.Close()
			return
		}

		pusher.H.Subscribe(uint(pollID), conn)
		defer pusher.H.Unsubscribe(uint(pollID), conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
