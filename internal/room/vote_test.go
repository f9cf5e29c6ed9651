package room

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteKind(t *testing.T) {
	tests := map[Vote]VoteKind{
		"0":     KindNumeric,
		"13":    KindNumeric,
		"0.5":   KindNumeric,
		" 8 ":   KindNumeric,
		"?":     KindUnknown,
		"☕":     KindBreak,
		"":      KindOther,
		"NaN":   KindOther,
		"Inf":   KindOther,
		"XL":    KindOther,
		"1e400": KindOther,
	}
	for v, want := range tests {
		assert.Equal(t, want, v.Kind(), "vote %q", v)
	}
}

func TestDeck(t *testing.T) {
	assert.True(t, Vote("21").InDeck())
	assert.True(t, BreakCard.InDeck())
	assert.False(t, Vote("4").InDeck())
}

func TestParseVote(t *testing.T) {
	tests := []struct {
		raw     string
		want    Vote
		wantErr bool
	}{
		{raw: `"5"`, want: "5"},
		{raw: `"☕"`, want: BreakCard},
		{raw: `""`, want: ""},
		{raw: `13`, want: "13"},
		{raw: `0.5`, want: "0.5"},
		{raw: `-1`, want: "-1"},
		{raw: `null`, wantErr: true},
		{raw: ``, wantErr: true},
		{raw: `true`, wantErr: true},
		{raw: `{"v":1}`, wantErr: true},
		{raw: `[1]`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseVote(json.RawMessage(tt.raw))
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrVoteValue, "raw %q", tt.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestVoteBook_OrderPreserved(t *testing.T) {
	req := require.New(t)
	var b VoteBook
	b.Set("z", "1")
	b.Set("a", "2")
	b.Set("m", "3")
	b.Set("z", "5")
	req.True(b.Delete("a"))
	req.False(b.Delete("a"))

	data, err := json.Marshal(b)
	req.NoError(err)
	req.JSONEq(`{"z":"5","m":"3"}`, string(data))
	req.Equal(`{"z":"5","m":"3"}`, string(data))

	var back VoteBook
	req.NoError(json.Unmarshal([]byte(`{"z":"5","b":8,"m":"3"}`), &back))
	req.Equal([]Ballot{{"z", "5"}, {"b", "8"}, {"m", "3"}}, back.Ballots())

	empty, err := json.Marshal(VoteBook{})
	req.NoError(err)
	req.Equal(`{}`, string(empty))

	req.Error(json.Unmarshal([]byte(`["x"]`), &back))
}
