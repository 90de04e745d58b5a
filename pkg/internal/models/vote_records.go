package models

import "time"

// VoteRecord is the append-only log backing vote deduplication. A voter is
// considered a duplicate when either the token or the fingerprint matches an
// existing record for the same poll, so each field carries its own composite
// unique index; the insert itself is the atomic dedup check.
type VoteRecord struct {
	BaseModel

	PollID      uint   `json:"poll_id" gorm:"uniqueIndex:idx_vote_records_token;uniqueIndex:idx_vote_records_fp"`
	Poll        *Poll  `json:"poll" gorm:"foreignKey:PollID"`
	VoterToken  string `json:"voter_token" gorm:"uniqueIndex:idx_vote_records_token;size:64"`
	Fingerprint string `json:"fingerprint" gorm:"uniqueIndex:idx_vote_records_fp;size:64"`

	VotedAt time.Time `json:"voted_at"`
}
