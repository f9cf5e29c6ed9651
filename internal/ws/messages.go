package ws

import (
	"encoding/json"
	"errors"

	"planningpoker/internal/room"
	"planningpoker/internal/services/rooms"
)

// Client -> server frame types.
const (
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypeNewVote     = "new_vote"
	TypeRevealVotes = "reveal_votes"
	TypeResetVotes  = "reset_votes"
)

// Server -> client frame types.
const (
	TypeSyncState = "sync_state"
	TypeRoomStats = "room_stats"
	TypeError     = "error"
)

// Envelope wraps every WS frame, in both directions.
type Envelope struct {
	Type    string          `json:"type"`              // e.g. "join_room"
	Payload json.RawMessage `json:"payload,omitempty"` // arbitrary JSON object
}

// ──────────────────────────── Request / Response DTOs ─────────────────────────

// JoinRoomRequest is the payload for "join_room". A missing roomSlug is
// reported as missing_room by the service, not as a validation failure.
type JoinRoomRequest struct {
	RoomSlug   string `json:"roomSlug"   validate:"max=128"`
	Name       string `json:"name"       validate:"max=64"`
	Avatar     string `json:"avatar"     validate:"max=32"`
	SessionID  string `json:"sessionId"  validate:"max=128"`
	AccessCode string `json:"accessCode" validate:"max=128"`
}

// VoteRequest is the payload for "new_vote". The value is kept raw so both
// string cards and bare numbers are accepted.
type VoteRequest struct {
	Value json.RawMessage `json:"value"`
}

// EmptyRequest is the payload of events that carry none.
type EmptyRequest struct{}

type RoomStatsBody struct {
	Stats room.Stats `json:"stats"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// protocolError is an error that travels to the client as-is.
type protocolError struct {
	code    string
	message string
}

func (e *protocolError) Error() string { return e.code }

var (
	errInvalidMessage = &protocolError{"invalid_message", "Invalid message."}
	errUnknownEvent   = &protocolError{"unknown_event", "Unknown websocket event."}
	errNotInRoom      = &protocolError{"not_in_room", "You are not in a room."}
)

var serviceErrors = []struct {
	err  error
	body ErrorBody
}{
	{rooms.ErrMissingRoom, ErrorBody{"missing_room", "Room not specified."}},
	{rooms.ErrRoomNotFound, ErrorBody{"room_not_found", "Room not found."}},
	{rooms.ErrInvalidAccessCode, ErrorBody{"invalid_access_code", "Invalid access code for this room."}},
	{rooms.ErrNotInRoom, ErrorBody{"not_in_room", "You are not in a room."}},
	{rooms.ErrInvalidVote, ErrorBody{"invalid_vote", "Invalid vote."}},
	{rooms.ErrNotOwner, ErrorBody{"not_owner", "Only the room owner can do this."}},
}

// errorBody maps err to the frame sent back to the client. Store failures
// and anything unexpected produce no frame.
func errorBody(err error) (ErrorBody, bool) {
	var pe *protocolError
	if errors.As(err, &pe) {
		return ErrorBody{Code: pe.code, Message: pe.message}, true
	}
	if errors.Is(err, rooms.ErrPersistence) {
		return ErrorBody{}, false
	}
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			return se.body, true
		}
	}
	return ErrorBody{}, false
}

type outFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func encodeFrame(typ string, payload any) ([]byte, error) {
	return json.Marshal(outFrame{Type: typ, Payload: payload})
}
