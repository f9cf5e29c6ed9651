package room

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// UpsertUser adds sessionID to the room or refreshes an existing entry in
// place. Re-joins keep their list position and previous avatar when the new
// one is blank.
func (r *Room) UpsertUser(sessionID, name, avatar string) {
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		cleanName = DefaultParticipantName
	}
	cleanAvatar := lo.EmptyableToPtr(strings.TrimSpace(avatar))

	_, idx, ok := lo.FindIndexOf(r.Users, func(p Participant) bool { return p.SessionID == sessionID })
	if !ok {
		r.Users = append(r.Users, Participant{
			SessionID: sessionID,
			Name:      cleanName,
			Avatar:    cleanAvatar,
			Connected: true,
		})
	} else {
		p := &r.Users[idx]
		p.Name = cleanName
		if cleanAvatar != nil {
			p.Avatar = cleanAvatar
		}
		p.Connected = true
	}

	if len(r.Users) > 0 {
		r.EmptiedAt = nil
	}
	if r.OwnerSessionID == sessionID {
		r.OwnerLeftAt = nil
	}
}

// MarkUserDisconnected flags a participant as offline while keeping their
// seat and vote.
func (r *Room) MarkUserDisconnected(sessionID string) bool {
	_, idx, ok := lo.FindIndexOf(r.Users, func(p Participant) bool { return p.SessionID == sessionID })
	if !ok {
		return false
	}
	r.Users[idx].Connected = false
	return true
}

// RemoveUser drops a participant and their vote. An owner leaving a
// non-empty room starts the absence grace period; leaving an empty room
// clears ownership.
func (r *Room) RemoveUser(sessionID string, now time.Time) {
	wasOwner := r.HasOwner() && r.OwnerSessionID == sessionID

	r.Users = lo.Reject(r.Users, func(p Participant, _ int) bool { return p.SessionID == sessionID })
	r.Votes.Delete(sessionID)

	if wasOwner {
		if len(r.Users) > 0 {
			r.OwnerLeftAt = At(now)
		} else {
			r.OwnerSessionID = ""
			r.OwnerLeftAt = nil
		}
	}
	if len(r.Users) == 0 {
		r.EmptiedAt = At(now)
	}
}

func (r *Room) SetVote(sessionID string, v Vote) {
	r.Votes.Set(sessionID, v)
	r.Stats = r.ComputeStats()
}

func (r *Room) ResetVotes() {
	r.Votes.Clear()
	r.Revealed = false
	r.Stats = Stats{}
}

func (r *Room) RevealVotes() {
	r.Revealed = true
	r.Stats = r.ComputeStats()
}

// AssignOwnerIfNone makes sessionID the owner when nobody holds the role.
func (r *Room) AssignOwnerIfNone(sessionID string) bool {
	if r.HasOwner() {
		return false
	}
	r.OwnerSessionID = sessionID
	r.OwnerLeftAt = nil
	return true
}

// CanManage reports whether sessionID may reveal or reset. A room without
// an owner lets anyone do it.
func (r *Room) CanManage(sessionID string) bool {
	return !r.HasOwner() || r.OwnerSessionID == sessionID
}

// RefreshOwner applies the succession policy and reports whether anything
// changed. An absent owner keeps the role until absenceTTL has elapsed since
// the absence was first noticed, then the earliest participant takes over.
func (r *Room) RefreshOwner(now time.Time, absenceTTL time.Duration) bool {
	ownerBefore, leftBefore := r.OwnerSessionID, r.OwnerLeftAt
	r.refreshOwner(now, absenceTTL)
	return r.OwnerSessionID != ownerBefore || r.OwnerLeftAt != leftBefore
}

func (r *Room) refreshOwner(now time.Time, absenceTTL time.Duration) {
	if len(r.Users) == 0 {
		r.OwnerSessionID = ""
		r.OwnerLeftAt = nil
		return
	}
	if !r.HasOwner() {
		r.OwnerLeftAt = nil
		return
	}
	if r.HasParticipant(r.OwnerSessionID) {
		r.OwnerLeftAt = nil
		return
	}

	if _, ok := r.OwnerLeftAt.Time(); !ok {
		// never noticed, or unparseable: the grace period starts now
		r.OwnerLeftAt = At(now)
		return
	}
	if r.OwnerLeftAt.Elapsed(now) >= absenceTTL {
		r.OwnerSessionID = r.Users[0].SessionID
		r.OwnerLeftAt = nil
	}
}
