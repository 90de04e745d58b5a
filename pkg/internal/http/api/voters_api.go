package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/pollroom/server/pkg/internal/http/exts"
	"github.com/pollroom/server/pkg/internal/models"
	"github.com/pollroom/server/pkg/internal/services"
	"github.com/samber/lo"
)

// listVotedPolls lets an anonymous voter pull back the polls their token
// participated in. Deliberately a POST: the token is a secret-ish credential
// and does not belong in a query string.
func listVotedPolls(c *fiber.Ctx) error {
	var data struct {
		VoterToken string `json:"voter_token" validate:"required,max=64"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	records, err := services.ListVotedPolls(data.VoterToken)
	if err != nil {
		if errors.Is(err, services.ErrIdentityRequired) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"total_voted": len(records),
		"polls": lo.FilterMap(records, func(record models.VoteRecord, _ int) (fiber.Map, bool) {
			if record.Poll == nil {
				return nil, false
			}
			return fiber.Map{
				"poll":     record.Poll,
				"voted_at": record.VotedAt,
			}, true
		}),
	})
}
