package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pollroom/server/pkg/internal/services"
)

func listTrendingPolls(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultFeedLimit)

	polls, err := services.TrendingPollsCached(limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(polls)
}

func listRecentPolls(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultFeedLimit)

	polls, err := services.RecentPolls(limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(polls)
}

func listPopularPolls(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.DefaultFeedLimit)

	polls, err := services.PopularPollsCached(limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(polls)
}
