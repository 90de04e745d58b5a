package services

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pollroom/server/pkg/internal/database"
	"github.com/pollroom/server/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVoteHappyPath(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 3)

	updated, err := CastVote(poll.ID, 1, "token-a", "fp-a")
	require.NoError(t, err)

	assert.EqualValues(t, 1, updated.TotalVotes)
	assert.EqualValues(t, 0, updated.Options[0].Votes)
	assert.EqualValues(t, 1, updated.Options[1].Votes)
}

func TestCastVoteIdentityRequired(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 2)

	_, err := CastVote(poll.ID, 0, "", "fp-a")
	assert.ErrorIs(t, err, ErrIdentityRequired)

	_, err = CastVote(poll.ID, 0, "token-a", "")
	assert.ErrorIs(t, err, ErrIdentityRequired)

	_, _, err = CheckVoted(poll.ID, "token-a", "")
	assert.ErrorIs(t, err, ErrIdentityRequired)
}

func TestCastVoteUnknownPoll(t *testing.T) {
	setupTestDB(t)

	_, err := CastVote(99999, 0, "token-a", "fp-a")
	assert.ErrorIs(t, err, ErrPollNotFound)
}

func TestCastVoteInvalidOption(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 2)

	_, err := CastVote(poll.ID, 2, "token-a", "fp-a")
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = CastVote(poll.ID, -1, "token-a", "fp-a")
	assert.ErrorIs(t, err, ErrInvalidOption)

	// The rejected attempts must not have left a dedup record behind.
	voted, _, err := CheckVoted(poll.ID, "token-a", "fp-a")
	require.NoError(t, err)
	assert.False(t, voted)
}

func TestCastVoteClosedPoll(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 2)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, database.C.Model(&models.Poll{}).
		Where("id = ?", poll.ID).
		Updates(map[string]any{"has_time_limit": true, "end_time": past}).Error)

	_, err := CastVote(poll.ID, 0, "token-a", "fp-a")
	assert.ErrorIs(t, err, ErrPollClosed)
}

func TestCastVoteDeduplicatesOnEitherField(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 2)

	_, err := CastVote(poll.ID, 0, "token-a", "fp-a")
	require.NoError(t, err)

	// Same token, fresh fingerprint: cleared cookies do not help.
	_, err = CastVote(poll.ID, 1, "token-a", "fp-b")
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	// Fresh token, same fingerprint: wiping local storage does not either.
	_, err = CastVote(poll.ID, 1, "token-b", "fp-a")
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	updated, err := GetPoll(poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated.SumVotes(), "failed attempts must not move counters")
}

func TestCastVoteSameIdentityOtherPoll(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	first := createTestPoll(t, creator, 2)
	second := createTestPoll(t, creator, 2)

	_, err := CastVote(first.ID, 0, "token-a", "fp-a")
	require.NoError(t, err)

	_, err = CastVote(second.ID, 0, "token-a", "fp-a")
	assert.NoError(t, err, "dedup is scoped per poll")
}

func TestCheckVotedReportsTimestamp(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 2)

	voted, votedAt, err := CheckVoted(poll.ID, "token-a", "fp-a")
	require.NoError(t, err)
	assert.False(t, voted)
	assert.Nil(t, votedAt)

	_, err = CastVote(poll.ID, 0, "token-a", "fp-a")
	require.NoError(t, err)

	voted, votedAt, err = CheckVoted(poll.ID, "token-a", "fp-other")
	require.NoError(t, err)
	assert.True(t, voted)
	require.NotNil(t, votedAt)
	assert.WithinDuration(t, time.Now(), *votedAt, time.Minute)
}

// Concurrent votes from one identity: exactly one lands, the counter moves
// by one, everyone else gets the duplicate answer.
func TestConcurrentVotesSameIdentity(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 3)

	const attempts = 8

	var successes, duplicates atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := CastVote(poll.ID, idx%3, "token-a", "fp-a")
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, ErrAlreadyVoted):
				duplicates.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes.Load())
	assert.EqualValues(t, attempts-1, duplicates.Load())

	updated, err := GetPoll(poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated.SumVotes())
}

// Concurrent votes from distinct identities must all succeed and none may
// be lost to a racing increment.
func TestConcurrentVotesDistinctIdentities(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	poll := createTestPoll(t, creator, 4)

	const voters = 12

	var wg sync.WaitGroup
	errs := make([]error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = CastVote(poll.ID, idx%4,
				fmt.Sprintf("token-%d", idx), fmt.Sprintf("fp-%d", idx))
		}(i)
	}
	wg.Wait()

	for idx, err := range errs {
		assert.NoError(t, err, "voter %d should have succeeded", idx)
	}

	updated, err := GetPoll(poll.ID)
	require.NoError(t, err)
	assert.EqualValues(t, voters, updated.SumVotes())
}

func TestListVotedPolls(t *testing.T) {
	setupTestDB(t)
	creator := createTestAccount(t, "alice")
	first := createTestPoll(t, creator, 2)
	second := createTestPoll(t, creator, 2)

	_, err := CastVote(first.ID, 0, "token-a", "fp-a")
	require.NoError(t, err)
	_, err = CastVote(second.ID, 1, "token-a", "fp-a")
	require.NoError(t, err)
	_, err = CastVote(second.ID, 0, "token-b", "fp-b")
	require.NoError(t, err)

	records, err := ListVotedPolls("token-a")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, record := range records {
		require.NotNil(t, record.Poll)
	}

	_, err = ListVotedPolls("")
	assert.ErrorIs(t, err, ErrIdentityRequired)
}
