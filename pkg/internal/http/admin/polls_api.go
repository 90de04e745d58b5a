package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pollroom/server/pkg/internal/auth"
	"github.com/pollroom/server/pkg/internal/services"
)

func adminListPolls(c *fiber.Ctx) error {
	if err := auth.EnsureAdmin(c); err != nil {
		return err
	}

	take := c.QueryInt("take", 50)
	offset := c.QueryInt("offset", 0)

	polls, err := services.ListAnyPolls(take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	count, err := services.CountPolls()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  polls,
	})
}

func adminDeletePoll(c *fiber.Ctx) error {
	if err := auth.EnsureAdmin(c); err != nil {
		return err
	}

	pollId, _ := c.ParamsInt("pollId")

	poll, err := services.GetPoll(uint(pollId))
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if err := services.DeletePoll(poll); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(poll)
}

func getStatistics(c *fiber.Ctx) error {
	if err := auth.EnsureAdmin(c); err != nil {
		return err
	}

	users, err := services.CountAccounts()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	polls, err := services.CountPolls()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	votes, err := services.CountVotes()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"total_users": users,
		"total_polls": polls,
		"total_votes": votes,
	})
}
