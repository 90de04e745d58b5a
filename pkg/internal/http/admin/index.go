package admin

import "github.com/gofiber/fiber/v2"

func MapControllers(app *fiber.App, baseURL string) {
	admin := app.Group(baseURL)
	{
		admin.Get("/stats", getStatistics)

		admin.Get("/users", adminListUsers)
		admin.Delete("/users/:userId", adminDeleteUser)
		admin.Post("/users/cleanup", adminTriggerCleanup)

		admin.Get("/polls", adminListPolls)
		admin.Delete("/polls/:pollId", adminDeletePoll)
	}
}
