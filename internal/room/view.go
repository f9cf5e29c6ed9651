package room

import (
	"github.com/samber/lo"
)

type PublicParticipant struct {
	SessionID string  `json:"sessionId"`
	Name      string  `json:"name"`
	Avatar    *string `json:"avatar"`
	Connected bool    `json:"connected"`
	HasVoted  bool    `json:"hasVoted"`
}

// PublicView is what every participant may see. Individual votes are only
// present once the room is revealed; the stats snapshot is always present.
type PublicView struct {
	Slug           string              `json:"slug"`
	Name           string              `json:"name"`
	Private        bool                `json:"private"`
	Revealed       bool                `json:"revealed"`
	OwnerSessionID *string             `json:"ownerSessionId"`
	Users          []PublicParticipant `json:"users"`
	Votes          VoteBook            `json:"votes"`
	Stats          Stats               `json:"stats"`
}

// ViewerState is a PublicView personalised with the viewer's own vote, so a
// reconnecting client can restore its card selection.
type ViewerState struct {
	Room          PublicView `json:"room"`
	SelfSessionID string     `json:"selfSessionId"`
	SelfVote      *Vote      `json:"selfVote"`
}

func (r *Room) PublicView(slug string) PublicView {
	users := lo.Map(r.Users, func(p Participant, _ int) PublicParticipant {
		_, voted := r.Votes.Get(p.SessionID)
		return PublicParticipant{
			SessionID: p.SessionID,
			Name:      p.Name,
			Avatar:    clonePtr(p.Avatar),
			Connected: p.Connected,
			HasVoted:  voted,
		}
	})

	view := PublicView{
		Slug:           slug,
		Name:           r.Name,
		Private:        r.Private,
		Revealed:       r.Revealed,
		OwnerSessionID: lo.EmptyableToPtr(r.OwnerSessionID),
		Users:          users,
		Stats:          r.Stats,
	}
	if r.Revealed {
		view.Votes = r.Votes.Clone()
	}
	return view
}

// ViewFor builds the state pushed to one viewer.
func (r *Room) ViewFor(slug, sessionID string) ViewerState {
	st := ViewerState{
		Room:          r.PublicView(slug),
		SelfSessionID: sessionID,
	}
	if v, ok := r.Votes.Get(sessionID); ok {
		st.SelfVote = &v
	}
	return st
}
