package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pollroom/server/pkg/internal/auth"
	"github.com/pollroom/server/pkg/internal/services"
)

func adminListUsers(c *fiber.Ctx) error {
	if err := auth.EnsureAdmin(c); err != nil {
		return err
	}

	take := c.QueryInt("take", 50)
	offset := c.QueryInt("offset", 0)

	accounts, err := services.ListAccounts(take, offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	count, err := services.CountAccounts()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  accounts,
	})
}

func adminDeleteUser(c *fiber.Ctx) error {
	if err := auth.EnsureAdmin(c); err != nil {
		return err
	}

	userId, _ := c.ParamsInt("userId")

	account, err := services.GetAccountWithID(uint(userId))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if err := services.DeleteAccount(account); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(account)
}

// adminTriggerCleanup kicks the maintenance pass that normally runs on the
// scheduler, including the purge of accounts that never verified their email.
func adminTriggerCleanup(c *fiber.Ctx) error {
	if err := auth.EnsureAdmin(c); err != nil {
		return err
	}

	go services.DoAutoDatabaseCleanup()

	return c.SendStatus(fiber.StatusOK)
}
