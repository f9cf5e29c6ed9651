package room

import (
	"encoding/json"
	"time"
)

// Instant is a stored point in time. A value that could not be parsed when
// loaded is kept as an unparseable instant instead of failing the whole room.
type Instant struct {
	t  time.Time
	ok bool
}

func At(t time.Time) *Instant { return &Instant{t: t, ok: true} }

// Time returns the instant and whether it was parseable.
func (i *Instant) Time() (time.Time, bool) {
	if i == nil {
		return time.Time{}, false
	}
	return i.t, i.ok
}

// Elapsed reports how long ago the instant was. Unparseable instants report
// zero so no expiry policy ever fires on them.
func (i *Instant) Elapsed(now time.Time) time.Duration {
	t, ok := i.Time()
	if !ok {
		return 0
	}
	return now.Sub(t)
}

func (i Instant) MarshalJSON() ([]byte, error) {
	if !i.ok {
		return []byte(`""`), nil
	}
	return json.Marshal(i.t.UTC().Format(time.RFC3339Nano))
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	*i = Instant{}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	*i = Instant{t: t, ok: true}
	return nil
}
