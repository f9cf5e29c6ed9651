package room

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Vote is the raw card value a participant submitted. The server stores it
// verbatim; Kind tells the stats engine how to treat it.
type Vote string

type VoteKind int

const (
	KindOther VoteKind = iota
	KindNumeric
	KindUnknown // "?"
	KindBreak   // "☕"
)

const (
	UnknownCard Vote = "?"
	BreakCard   Vote = "☕"
)

// Deck is the card set offered by the client.
var Deck = []Vote{"0", "1", "2", "3", "5", "8", "13", "21", "34", "55", UnknownCard, BreakCard}

var ErrVoteValue = errors.New("vote must be a string or a number")

func (v Vote) Kind() VoteKind {
	switch v {
	case UnknownCard:
		return KindUnknown
	case BreakCard:
		return KindBreak
	}
	if _, ok := v.Number(); ok {
		return KindNumeric
	}
	return KindOther
}

// Number reports the numeric value of v. Blank, NaN and infinite values are
// not numeric.
func (v Vote) Number() (float64, bool) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func (v Vote) InDeck() bool { return lo.Contains(Deck, v) }

// ParseVote turns a wire value into a Vote. Strings are kept as-is, numbers
// keep their literal text. null and any other JSON type are rejected.
func ParseVote(raw json.RawMessage) (Vote, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", ErrVoteValue
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: %v", ErrVoteValue, err)
		}
		return Vote(s), nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", fmt.Errorf("%w: %v", ErrVoteValue, err)
		}
		return Vote(n.String()), nil
	}
	return "", ErrVoteValue
}

// Ballot is one entry of a VoteBook.
type Ballot struct {
	SessionID string
	Value     Vote
}

// VoteBook maps session ids to votes and keeps first-insertion order. The
// order decides the mode tie-break, so it survives JSON round trips.
type VoteBook struct {
	ballots []Ballot
}

func (b *VoteBook) Len() int { return len(b.ballots) }

func (b *VoteBook) Get(sessionID string) (Vote, bool) {
	for _, bl := range b.ballots {
		if bl.SessionID == sessionID {
			return bl.Value, true
		}
	}
	return "", false
}

// Set records v for sessionID. A repeated vote keeps its original position.
func (b *VoteBook) Set(sessionID string, v Vote) {
	_, idx, ok := lo.FindIndexOf(b.ballots, func(bl Ballot) bool { return bl.SessionID == sessionID })
	if ok {
		b.ballots[idx].Value = v
		return
	}
	b.ballots = append(b.ballots, Ballot{SessionID: sessionID, Value: v})
}

// Delete removes the vote of sessionID and reports whether one existed.
func (b *VoteBook) Delete(sessionID string) bool {
	before := len(b.ballots)
	b.ballots = lo.Reject(b.ballots, func(bl Ballot, _ int) bool { return bl.SessionID == sessionID })
	return len(b.ballots) != before
}

func (b *VoteBook) Clear() { b.ballots = nil }

// Ballots returns a copy in insertion order.
func (b *VoteBook) Ballots() []Ballot {
	return append([]Ballot(nil), b.ballots...)
}

func (b *VoteBook) Values() []Vote {
	return lo.Map(b.ballots, func(bl Ballot, _ int) Vote { return bl.Value })
}

func (b *VoteBook) Clone() VoteBook {
	return VoteBook{ballots: b.Ballots()}
}

func (b VoteBook) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, bl := range b.ballots {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(bl.SessionID)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(string(bl.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object in document order. null entries are dropped,
// numeric entries keep their literal text.
func (b *VoteBook) UnmarshalJSON(data []byte) error {
	b.ballots = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("votes: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		v, err := ParseVote(raw)
		if err != nil {
			continue
		}
		b.Set(key, v)
	}
	_, err = dec.Token()
	return err
}
