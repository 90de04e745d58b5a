package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pollroom/server/pkg/internal/auth"
	"github.com/pollroom/server/pkg/internal/http/exts"
	"github.com/pollroom/server/pkg/internal/models"
	"github.com/pollroom/server/pkg/internal/services"
)

func getUserinfo(c *fiber.Ctx) error {
	if err := auth.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	return c.JSON(user)
}

func editUserinfo(c *fiber.Ctx) error {
	if err := auth.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	var data struct {
		Name   string `json:"name" validate:"required,max=100"`
		Avatar string `json:"avatar" validate:"max=1024"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	account, err := services.UpdateAccountProfile(user, data.Name, data.Avatar)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(account)
}

// deleteUserinfo lets an account remove itself; owned polls go down the same
// soft-delete path an admin removal takes.
func deleteUserinfo(c *fiber.Ctx) error {
	if err := auth.EnsureAuthenticated(c); err != nil {
		return err
	}
	user := c.Locals("user").(models.Account)

	if err := services.DeleteAccount(user); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(user)
}
