package room

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func votingRoom() *Room {
	r := New("Planning", false, "")
	r.UpsertUser("a", "Ann", "🐱")
	r.UpsertUser("b", "Ben", "")
	r.UpsertUser("c", "Cy", "")
	r.AssignOwnerIfNone("a")
	r.SetVote("a", "5")
	r.SetVote("b", "13")
	return r
}

func TestPublicView_HidesVotesUntilRevealed(t *testing.T) {
	req := require.New(t)
	r := votingRoom()

	for _, viewer := range []string{"a", "b", "c", "stranger"} {
		st := r.ViewFor("planning-x1y2", viewer)
		req.Equal(0, st.Room.Votes.Len(), "viewer %s", viewer)
		req.Equal("planning-x1y2", st.Room.Slug)
		req.Equal(viewer, st.SelfSessionID)

		own, voted := r.Votes.Get(viewer)
		if voted {
			req.NotNil(st.SelfVote)
			req.Equal(own, *st.SelfVote)
		} else {
			req.Nil(st.SelfVote)
		}

		data, err := json.Marshal(st)
		req.NoError(err)
		var decoded map[string]any
		req.NoError(json.Unmarshal(data, &decoded))
		roomJSON := decoded["room"].(map[string]any)
		req.Empty(roomJSON["votes"])
		// b's card is not the mode, so it must not appear in anyone else's frame
		if viewer != "b" {
			req.NotContains(string(data), `"13"`)
		}
	}

	// stats are public even before reveal
	req.Equal(2, r.PublicView("s").Stats.TotalVotes)
}

func TestPublicView_HasVotedAndOwner(t *testing.T) {
	r := votingRoom()
	v := r.PublicView("s")

	require.Len(t, v.Users, 3)
	assert.True(t, v.Users[0].HasVoted)
	assert.True(t, v.Users[1].HasVoted)
	assert.False(t, v.Users[2].HasVoted)
	require.NotNil(t, v.OwnerSessionID)
	assert.Equal(t, "a", *v.OwnerSessionID)

	r.OwnerSessionID = ""
	assert.Nil(t, r.PublicView("s").OwnerSessionID)
}

func TestPublicView_RevealedShowsVotes(t *testing.T) {
	r := votingRoom()
	r.RevealVotes()

	v := r.ViewFor("s", "c")
	assert.Equal(t, []Ballot{{"a", "5"}, {"b", "13"}}, v.Room.Votes.Ballots())
	assert.Nil(t, v.SelfVote)

	// the view is a copy
	v.Room.Votes.Set("c", "1")
	_, ok := r.Votes.Get("c")
	assert.False(t, ok)
}
