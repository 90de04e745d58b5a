package api

import (
	"github.com/gofiber/fiber/v2"
)

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL)
	{
		polls := api.Group("/polls")
		{
			polls.Get("/", listPolls)
			polls.Get("/my", getMyPolls)
			polls.Get("/trending", listTrendingPolls)
			polls.Get("/recent", listRecentPolls)
			polls.Get("/popular", listPopularPolls)
			polls.Get("/search", searchPolls)
			polls.Get("/room/:roomCode", getPollByRoomCode)
			polls.Get("/:pollId", getPoll)
			polls.Get("/:pollId/qrcode", getPollQrCode)
			polls.Post("/", createPoll)
			polls.Put("/:pollId", updatePoll)
			polls.Delete("/:pollId", deletePoll)

			polls.Post("/:pollId/votes", castPollVote)
			polls.Post("/:pollId/voted", checkPollVoted)
		}

		voters := api.Group("/voters")
		{
			voters.Post("/voted-polls", listVotedPolls)
		}

		users := api.Group("/users")
		{
			users.Get("/me", getUserinfo)
			users.Put("/me", editUserinfo)
			users.Delete("/me", deleteUserinfo)
		}
	}
}
