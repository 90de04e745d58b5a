package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/pollroom/server/pkg/internal/database"
	"github.com/pollroom/server/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPollAssignsRoomCode(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")

	poll := createTestPoll(t, creator, 2)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}$`), poll.RoomCode)

	other := createTestPoll(t, creator, 2)
	assert.NotEqual(t, poll.RoomCode, other.RoomCode)
}

func TestGetPollByRoomCode(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 2)

	found, err := GetPollByRoomCode(poll.RoomCode)
	require.NoError(t, err)
	assert.Equal(t, poll.ID, found.ID)
	assert.Len(t, found.Options, 2)

	_, err = GetPollByRoomCode("00000000")
	assert.ErrorIs(t, err, ErrPollNotFound)
}

func TestUpdatePollPreservesVoteCounters(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 2)

	_, err := CastVote(poll.ID, 0, "token-a", "fp-a")
	require.NoError(t, err)

	poll.Title = "Renamed"
	updated, err := UpdatePoll(poll, []models.PollOption{
		{Text: "Rewritten first"},
		{Text: "Rewritten second"},
		{Text: "Brand new third"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	require.Len(t, updated.Options, 3)
	assert.EqualValues(t, 1, updated.Options[0].Votes, "counter survives an option rewrite")
	assert.EqualValues(t, 0, updated.Options[2].Votes)
}

func TestDeletePollHidesIt(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 2)

	require.NoError(t, DeletePoll(poll))

	_, err := GetPoll(poll.ID)
	assert.ErrorIs(t, err, ErrPollNotFound)
}

func TestSearchPollsMatchesTitle(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")

	lunch := models.Poll{Title: "Where to eat lunch", IsPublic: true, CreatorID: creator.ID,
		Options: []models.PollOption{{Idx: 0, Text: "A"}, {Idx: 1, Text: "B"}}}
	lunch, err := NewPoll(lunch)
	require.NoError(t, err)

	hidden := models.Poll{Title: "Secret lunch meeting", IsPublic: false, CreatorID: creator.ID,
		Options: []models.PollOption{{Idx: 0, Text: "A"}, {Idx: 1, Text: "B"}}}
	_, err = NewPoll(hidden)
	require.NoError(t, err)

	results, err := SearchPolls("LUNCH", 10)
	require.NoError(t, err)
	require.Len(t, results, 1, "private polls stay out of search")
	assert.Equal(t, lunch.ID, results[0].ID)
}

func TestEndTimeFor(t *testing.T) {
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	deadline := EndTimeFor(models.PollTimeLimit{Amount: 6, Unit: "hours"}, from)
	require.NotNil(t, deadline)
	assert.Equal(t, from.Add(6*time.Hour), *deadline)

	deadline = EndTimeFor(models.PollTimeLimit{Amount: 2, Unit: "weeks"}, from)
	require.NotNil(t, deadline)
	assert.Equal(t, from.Add(14*24*time.Hour), *deadline)

	assert.Nil(t, EndTimeFor(models.PollTimeLimit{Amount: 1, Unit: "fortnights"}, from))
}

func TestListPollsWithAccountSplitsByStatus(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	other := createTestAccount(t, "bob")

	open := createTestPoll(t, creator, 2)
	createTestPoll(t, other, 2)

	closedAt := time.Now().Add(-time.Hour)
	closed := createTestPoll(t, creator, 2)
	require.NoError(t, database.C.Model(&models.Poll{}).
		Where("id = ?", closed.ID).
		Updates(map[string]any{"has_time_limit": true, "end_time": closedAt}).Error)

	polls, err := ListPollsWithAccount(creator.ID)
	require.NoError(t, err)
	require.Len(t, polls, 2)

	statuses := map[uint]string{}
	for _, poll := range polls {
		statuses[poll.ID] = poll.Status
	}
	assert.Equal(t, models.PollStatusActive, statuses[open.ID])
	assert.Equal(t, models.PollStatusClosed, statuses[closed.ID])
}
