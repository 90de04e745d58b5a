package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PollStatusActive = "active"
	PollStatusClosed = "closed"
)

// PollTimeLimit keeps the creator's original duration input so the edit
// form can render it back; EndTime is the value enforcement reads.
type PollTimeLimit struct {
	Amount int    `json:"amount"`
	Unit   string `json:"unit"`
}

type Poll struct {
	BaseModel

	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IsPublic    bool   `json:"is_public"`

	HasTimeLimit bool                              `json:"has_time_limit"`
	TimeLimit    datatypes.JSONType[PollTimeLimit] `json:"time_limit"`
	EndTime      *time.Time                        `json:"end_time"`

	RoomCode string `json:"room_code" gorm:"uniqueIndex;size:16"`

	Options []PollOption `json:"options" gorm:"foreignKey:PollID;constraint:OnDelete:CASCADE"`

	CreatorID uint     `json:"creator_id"`
	Creator   *Account `json:"creator" gorm:"foreignKey:CreatorID"`

	// Computed at read time, never stored. There is deliberately no cached
	// total on the row, so the sum of option counters stays the single
	// source of truth.
	Status     string `json:"status" gorm:"-"`
	TotalVotes int64  `json:"total_votes" gorm:"-"`
}

type PollOption struct {
	BaseModel

	PollID uint   `json:"poll_id" gorm:"index"`
	Idx    int    `json:"idx"`
	Text   string `json:"text"`
	Votes  int64  `json:"votes"`
}

// CurrentStatus reports active unless a time limit exists and has elapsed.
// A poll without a time limit never closes, whatever EndTime holds.
func (p Poll) CurrentStatus(now time.Time) string {
	if !p.HasTimeLimit || p.EndTime == nil {
		return PollStatusActive
	}
	if now.Before(*p.EndTime) {
		return PollStatusActive
	}
	return PollStatusClosed
}

func (p Poll) SumVotes() int64 {
	var total int64
	for _, option := range p.Options {
		total += option.Votes
	}
	return total
}

// Hydrate fills the virtual fields before the poll gets serialized.
func (p *Poll) Hydrate() {
	p.Status = p.CurrentStatus(time.Now())
	p.TotalVotes = p.SumVotes()
}
