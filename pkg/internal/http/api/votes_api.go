package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pollroom/server/pkg/internal/http/exts"
	"github.com/pollroom/server/pkg/internal/pusher"
	"github.com/pollroom/server/pkg/internal/services"
)

// Voting never requires a signed-in account; the anonymous identity pair is
// the whole credential.

func castPollVote(c *fiber.Ctx) error {
	pollId, _ := c.ParamsInt("pollId")

	var data struct {
		Option      int    `json:"option" validate:"min=0"`
		VoterToken  string `json:"voter_token" validate:"required,max=64"`
		Fingerprint string `json:"fingerprint" validate:"required,max=64"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	poll, err := services.CastVote(uint(pollId), data.Option, data.VoterToken, data.Fingerprint)
	if err != nil {
		return translateVoteError(err)
	}

	pusher.BroadcastPollUpdate(poll)

	return c.JSON(poll)
}

func checkPollVoted(c *fiber.Ctx) error {
	pollId, _ := c.ParamsInt("pollId")

	var data struct {
		VoterToken  string `json:"voter_token" validate:"required,max=64"`
		Fingerprint string `json:"fingerprint" validate:"required,max=64"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	voted, votedAt, err := services.CheckVoted(uint(pollId), data.VoterToken, data.Fingerprint)
	if err != nil {
		return translateVoteError(err)
	}

	if voted {
		return c.JSON(fiber.Map{
			"has_voted": true,
			"voted_at":  votedAt,
		})
	}

	return c.JSON(fiber.Map{
		"has_voted": false,
	})
}

func translateVoteError(err error) error {
	switch {
	case errors.Is(err, services.ErrIdentityRequired):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidOption):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPollNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrAlreadyVoted):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrPollClosed):
		return fiber.NewError(fiber.StatusGone, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
