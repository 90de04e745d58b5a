package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/pollroom/server/pkg/internal/services"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/viper"
)

// getPollQrCode renders the poll's share link as a PNG so the frontend can
// show a scannable code next to the room code.
func getPollQrCode(c *fiber.Ctx) error {
	pollId, _ := c.ParamsInt("pollId")

	poll, err := services.GetPoll(uint(pollId))
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	size := c.QueryInt("size", 256)
	if size < 128 {
		size = 128
	} else if size > 1024 {
		size = 1024
	}

	base := strings.TrimSuffix(viper.GetString("frontend_app"), "/")
	shareURL := fmt.Sprintf("%s/room/%s", base, poll.RoomCode)

	png, err := qrcode.Encode(shareURL, qrcode.Medium, size)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}
