package ws

// connSet holds the live connections of one room together with the session
// each of them is bound as. Guarded by the Hub lock.
type connSet map[*clientConn]string

type target struct {
	conn      *clientConn
	sessionID string
}

func (s connSet) snapshot() []target {
	out := make([]target, 0, len(s))
	for c, sessionID := range s {
		out = append(out, target{conn: c, sessionID: sessionID})
	}
	return out
}
