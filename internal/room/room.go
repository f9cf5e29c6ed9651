// Package room holds the planning poker room model and its state
// transitions. Nothing in here performs I/O; callers load a Room, apply the
// functions below and persist the result.
package room

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	DefaultRoomName        = "Room"
	DefaultParticipantName = "Anonymous"

	// OwnerAbsenceTTL is how long an owner may be gone before ownership
	// passes to the earliest remaining participant.
	OwnerAbsenceTTL = 30 * time.Second
)

type Participant struct {
	SessionID string  `json:"sessionId"`
	Name      string  `json:"name"`
	Avatar    *string `json:"avatar"`
	Connected bool    `json:"connected"`
}

type Stats struct {
	TotalVotes   int      `json:"totalVotes"`
	UniqueValues int      `json:"uniqueValues"`
	MostFrequent *Vote    `json:"mostFrequent"`
	Average      *float64 `json:"average"`
}

type Room struct {
	Name           string        `json:"name"`
	Private        bool          `json:"private"`
	AccessCode     *string       `json:"accessCode"`
	Users          []Participant `json:"users"`
	Votes          VoteBook      `json:"votes"`
	Stats          Stats         `json:"stats"`
	Revealed       bool          `json:"revealed"`
	OwnerSessionID string        `json:"ownerSessionId"`
	EmptiedAt      *Instant      `json:"emptiedAt"`
	OwnerLeftAt    *Instant      `json:"ownerLeftAt"`
}

// New builds an empty room. A private room whose access code is blank after
// trimming is stored without a code, which leaves it unprotected.
func New(name string, private bool, accessCode string) *Room {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultRoomName
	}
	r := &Room{
		Name:    name,
		Private: private,
		Users:   []Participant{},
	}
	if private {
		r.AccessCode = lo.EmptyableToPtr(strings.TrimSpace(accessCode))
	}
	return r
}

// RequiresCode reports whether joining needs an access code.
func (r *Room) RequiresCode() bool {
	return r.Private && r.AccessCode != nil && *r.AccessCode != ""
}

// CheckCode compares a supplied code with the room's after trimming.
func (r *Room) CheckCode(code string) bool {
	if !r.RequiresCode() {
		return true
	}
	provided := strings.TrimSpace(code)
	return provided != "" && provided == *r.AccessCode
}

func (r *Room) Participant(sessionID string) (Participant, bool) {
	return lo.Find(r.Users, func(p Participant) bool { return p.SessionID == sessionID })
}

func (r *Room) HasParticipant(sessionID string) bool {
	_, ok := r.Participant(sessionID)
	return ok
}

func (r *Room) IsEmpty() bool { return len(r.Users) == 0 }

func (r *Room) HasOwner() bool { return r.OwnerSessionID != "" }

// Clone returns a deep copy so stores never share state with callers.
func (r *Room) Clone() *Room {
	c := *r
	c.AccessCode = clonePtr(r.AccessCode)
	c.Users = lo.Map(r.Users, func(p Participant, _ int) Participant {
		p.Avatar = clonePtr(p.Avatar)
		return p
	})
	c.Votes = r.Votes.Clone()
	c.Stats.MostFrequent = clonePtr(r.Stats.MostFrequent)
	c.Stats.Average = clonePtr(r.Stats.Average)
	c.EmptiedAt = clonePtr(r.EmptiedAt)
	c.OwnerLeftAt = clonePtr(r.OwnerLeftAt)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
