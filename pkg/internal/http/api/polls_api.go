package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pollroom/server/pkg/internal/auth"
	"github.com/pollroom/server/pkg/internal/http/exts"
	"github.com/pollroom/server/pkg/internal/models"
	"github.com/pollroom/server/pkg/internal/services"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

type pollPayload struct {
	Title        string                `json:"title" validate:"required,max=160"`
	Description  string                `json:"description" validate:"max=2048"`
	Category     string                `json:"category" validate:"max=64"`
	IsPublic     bool                  `json:"is_public"`
	HasTimeLimit bool                  `json:"has_time_limit"`
	TimeLimit    *models.PollTimeLimit `json:"time_limit"`
	Options      []string              `json:"options" validate:"required,min=2,max=20,dive,required,max=160"`
}

func listPolls(c *fiber.Ctx) error {
	if err := auth.EnsureAuthenticated(c); err != nil {
		return err
	}

	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)

	polls, err := services.ListPolls(take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(polls)
}

func getMyPolls(c *fiber.Ctx) error {
	if err := auth.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	polls, err := services.ListPollsWithAccount(user.ID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"my_polls": polls,
		"active_polls": lo.Filter(polls, func(poll models.Poll, _ int) bool {
			return poll.Status == models.PollStatusActive
		}),
		"closed_polls": lo.Filter(polls, func(poll models.Poll, _ int) bool {
			return poll.Status == models.PollStatusClosed
		}),
	})
}

func getPoll(c *fiber.Ctx) error {
	pollId, _ := c.ParamsInt("pollId")

	poll, err := services.GetPollWithCreator(uint(pollId))
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	poll.Hydrate()

	return c.JSON(poll)
}

func getPollByRoomCode(c *fiber.Ctx) error {
	poll, err := services.GetPollByRoomCode(c.Params("roomCode"))
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	poll.Hydrate()

	return c.JSON(poll)
}

func searchPolls(c *fiber.Ctx) error {
	probe := c.Query("query")
	if len(probe) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "search query is required")
	}

	polls, err := services.SearchPolls(probe, c.QueryInt("take", 20))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(polls)
}

func createPoll(c *fiber.Ctx) error {
	if err := auth.EnsureVerified(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	var data pollPayload
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	poll := models.Poll{
		Title:        data.Title,
		Description:  data.Description,
		Category:     data.Category,
		IsPublic:     data.IsPublic,
		HasTimeLimit: data.HasTimeLimit,
		CreatorID:    user.ID,
		Options: lo.Map(data.Options, func(text string, idx int) models.PollOption {
			return models.PollOption{Idx: idx, Text: text}
		}),
	}
	if data.HasTimeLimit && data.TimeLimit != nil {
		poll.TimeLimit = datatypes.NewJSONType(*data.TimeLimit)
		poll.EndTime = services.EndTimeFor(*data.TimeLimit, time.Now())
	}

	poll, err := services.NewPoll(poll)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	poll.Hydrate()

	return c.Status(fiber.StatusCreated).JSON(poll)
}

func updatePoll(c *fiber.Ctx) error {
	pollId, _ := c.ParamsInt("pollId")

	if err := auth.EnsureVerified(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	var data pollPayload
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	poll, err := services.GetPoll(uint(pollId))
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if poll.CreatorID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "you cannot edit someone else's poll")
	}

	poll.Title = data.Title
	poll.Description = data.Description
	poll.Category = data.Category
	poll.IsPublic = data.IsPublic
	poll.HasTimeLimit = data.HasTimeLimit
	if data.HasTimeLimit && data.TimeLimit != nil {
		poll.TimeLimit = datatypes.NewJSONType(*data.TimeLimit)
		poll.EndTime = services.EndTimeFor(*data.TimeLimit, poll.CreatedAt)
	} else {
		poll.EndTime = nil
	}

	options := lo.Map(data.Options, func(text string, idx int) models.PollOption {
		return models.PollOption{Idx: idx, Text: text}
	})

	poll, err = services.UpdatePoll(poll, options)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	poll.Hydrate()

	return c.JSON(poll)
}

func deletePoll(c *fiber.Ctx) error {
	pollId, _ := c.ParamsInt("pollId")

	if err := auth.EnsureVerified(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	poll, err := services.GetPoll(uint(pollId))
	if err != nil {
		if errors.Is(err, services.ErrPollNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if poll.CreatorID != user.ID && !user.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "you cannot delete someone else's poll")
	}

	if err := services.DeletePoll(poll); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(poll)
}
