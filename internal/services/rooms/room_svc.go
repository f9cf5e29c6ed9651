package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planningpoker/internal/room"
	"planningpoker/internal/roomstore"
)

var (
	ErrMissingRoom       = errors.New("room slug is required")
	ErrRoomNotFound      = errors.New("room not found")
	ErrInvalidAccessCode = errors.New("invalid access code for this room")
	ErrNotInRoom         = errors.New("not in a room")
	ErrInvalidVote       = errors.New("invalid vote")
	ErrNotOwner          = errors.New("only the room owner can do this")

	// ErrPersistence wraps store failures. Nothing was saved or broadcast.
	ErrPersistence = errors.New("room store failure")
)

// Notifier receives every successfully saved room state. It is called with
// the room lock held, so notifications for one room arrive in commit order.
type Notifier interface {
	RoomUpdated(slug string, r *room.Room)
}

type JoinParams struct {
	Slug       string
	Name       string
	Avatar     string
	SessionID  string
	AccessCode string
}

type SweepResult struct {
	Scanned int
	Marked  int
	Deleted int
	Failed  int
}

type IRoomService interface {
	CreateRoom(ctx context.Context, name string, private bool, accessCode string) (string, *room.Room, error)
	GetRoom(ctx context.Context, slug string) (*room.Room, error)
	// Join binds sessionID (generated when empty) to the room. attach runs
	// after the save and before the broadcast.
	Join(ctx context.Context, p JoinParams, attach func(sessionID string)) (string, error)
	Leave(ctx context.Context, slug, sessionID string) error
	// Disconnect keeps the participant's seat and vote but flags them
	// offline; used when the server itself goes away.
	Disconnect(ctx context.Context, slug, sessionID string) error
	Vote(ctx context.Context, slug, sessionID string, v room.Vote) error
	Reveal(ctx context.Context, slug, sessionID string) error
	Reset(ctx context.Context, slug, sessionID string) error
	Sweep(ctx context.Context) (SweepResult, error)
}

type Settings struct {
	OwnerAbsenceTTL time.Duration
	EmptyRoomTTL    time.Duration
	Now             func() time.Time
}

type roomService struct {
	store    roomstore.Store
	notifier Notifier
	locks    *roomLocks
	settings Settings
}

var _ IRoomService = (*roomService)(nil)

func NewRoomService(store roomstore.Store, notifier Notifier, settings Settings) IRoomService {
	if settings.OwnerAbsenceTTL <= 0 {
		settings.OwnerAbsenceTTL = room.OwnerAbsenceTTL
	}
	if settings.EmptyRoomTTL <= 0 {
		settings.EmptyRoomTTL = 5 * time.Minute
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &roomService{
		store:    store,
		notifier: notifier,
		locks:    newRoomLocks(),
		settings: settings,
	}
}

func (svc *roomService) CreateRoom(ctx context.Context, name string, private bool, accessCode string) (string, *room.Room, error) {
	r := room.New(name, private, accessCode)
	slug := room.GenerateSlug(r.Name)

	unlock := svc.locks.lock(slug)
	defer unlock()

	if err := svc.save(ctx, slug, r); err != nil {
		return "", nil, err
	}
	zap.L().Info("rooms.created", zap.String("slug", slug), zap.Bool("private", r.Private))
	return slug, r, nil
}

func (svc *roomService) GetRoom(ctx context.Context, slug string) (*room.Room, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, ErrMissingRoom
	}
	return svc.load(ctx, slug)
}

func (svc *roomService) Join(ctx context.Context, p JoinParams, attach func(sessionID string)) (string, error) {
	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		return "", ErrMissingRoom
	}

	unlock := svc.locks.lock(slug)
	defer unlock()

	r, err := svc.load(ctx, slug)
	if err != nil {
		return "", err
	}
	if !r.CheckCode(p.AccessCode) {
		return "", ErrInvalidAccessCode
	}

	now := svc.settings.Now()
	r.RefreshOwner(now, svc.settings.OwnerAbsenceTTL)

	sessionID := strings.TrimSpace(p.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	r.UpsertUser(sessionID, p.Name, p.Avatar)
	// an owner-less room goes to whoever joins, however many are present
	r.AssignOwnerIfNone(sessionID)

	if err := svc.save(ctx, slug, r); err != nil {
		return "", err
	}
	if attach != nil {
		attach(sessionID)
	}
	svc.notify(slug, r)
	return sessionID, nil
}

func (svc *roomService) Leave(ctx context.Context, slug, sessionID string) error {
	unlock := svc.locks.lock(slug)
	defer unlock()

	r, err := svc.load(ctx, slug)
	if errors.Is(err, ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	now := svc.settings.Now()
	r.RemoveUser(sessionID, now)
	r.RefreshOwner(now, svc.settings.OwnerAbsenceTTL)

	if err := svc.save(ctx, slug, r); err != nil {
		return err
	}
	svc.notify(slug, r)
	return nil
}

func (svc *roomService) Disconnect(ctx context.Context, slug, sessionID string) error {
	unlock := svc.locks.lock(slug)
	defer unlock()

	r, err := svc.load(ctx, slug)
	if errors.Is(err, ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !r.MarkUserDisconnected(sessionID) {
		return nil
	}
	return svc.save(ctx, slug, r)
}

func (svc *roomService) Vote(ctx context.Context, slug, sessionID string, v room.Vote) error {
	unlock := svc.locks.lock(slug)
	defer unlock()

	r, err := svc.load(ctx, slug)
	if err != nil {
		return err
	}
	if !r.HasParticipant(sessionID) {
		return ErrNotInRoom
	}

	r.SetVote(sessionID, v)
	if err := svc.save(ctx, slug, r); err != nil {
		return err
	}
	svc.notify(slug, r)
	return nil
}

func (svc *roomService) Reveal(ctx context.Context, slug, sessionID string) error {
	return svc.manage(ctx, slug, sessionID, (*room.Room).RevealVotes)
}

func (svc *roomService) Reset(ctx context.Context, slug, sessionID string) error {
	return svc.manage(ctx, slug, sessionID, (*room.Room).ResetVotes)
}

// manage runs an owner-only mutation. The owner is refreshed first so an
// expired absence can hand the role over before the check.
func (svc *roomService) manage(ctx context.Context, slug, sessionID string, mutate func(*room.Room)) error {
	unlock := svc.locks.lock(slug)
	defer unlock()

	r, err := svc.load(ctx, slug)
	if err != nil {
		return err
	}

	r.RefreshOwner(svc.settings.Now(), svc.settings.OwnerAbsenceTTL)
	if !r.CanManage(sessionID) {
		return ErrNotOwner
	}

	mutate(r)
	if err := svc.save(ctx, slug, r); err != nil {
		return err
	}
	svc.notify(slug, r)
	return nil
}

// ---------------------------------------------------------------------------
//  Reaper sweep
// ---------------------------------------------------------------------------

// Sweep walks every stored room once. Empty rooms are marked on first
// sight and deleted once they stayed empty for EmptyRoomTTL; occupied rooms
// get their ownership refreshed and lose seats left offline by a restart.
func (svc *roomService) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	slugs, err := svc.store.List(ctx)
	if err != nil {
		zap.L().Error("rooms.sweep_list", zap.Error(err))
		return res, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Scanned++
		svc.sweepOne(ctx, slug, &res)
	}
	return res, nil
}

func (svc *roomService) sweepOne(ctx context.Context, slug string, res *SweepResult) {
	unlock := svc.locks.lock(slug)
	defer unlock()

	r, err := svc.load(ctx, slug)
	if errors.Is(err, ErrRoomNotFound) {
		return
	}
	if err != nil {
		res.Failed++
		return
	}
	now := svc.settings.Now()

	if !r.IsEmpty() {
		ownerBefore := r.OwnerSessionID
		changed := r.EmptiedAt != nil
		r.EmptiedAt = nil

		for _, p := range r.Users {
			if !p.Connected {
				r.RemoveUser(p.SessionID, now)
				changed = true
			}
		}
		if r.RefreshOwner(now, svc.settings.OwnerAbsenceTTL) {
			changed = true
		}
		if !changed {
			return
		}
		if err := svc.save(ctx, slug, r); err != nil {
			res.Failed++
			return
		}
		if r.IsEmpty() {
			res.Marked++
		}
		if r.OwnerSessionID != ownerBefore {
			zap.L().Info("rooms.owner_changed",
				zap.String("slug", slug),
				zap.String("from", ownerBefore),
				zap.String("to", r.OwnerSessionID),
			)
		}
		svc.notify(slug, r)
		return
	}

	if _, ok := r.EmptiedAt.Time(); !ok {
		// unmarked or unparseable: start the clock, never delete on this pass
		r.EmptiedAt = room.At(now)
		if err := svc.save(ctx, slug, r); err != nil {
			res.Failed++
			return
		}
		res.Marked++
		return
	}

	if r.EmptiedAt.Elapsed(now) < svc.settings.EmptyRoomTTL {
		return
	}
	if err := svc.store.Delete(ctx, slug); err != nil {
		zap.L().Error("rooms.delete", zap.String("slug", slug), zap.Error(err))
		res.Failed++
		return
	}
	res.Deleted++
	zap.L().Info("rooms.reaped", zap.String("slug", slug), zap.Duration("empty_for", r.EmptiedAt.Elapsed(now)))
}

// ---------------------------------------------------------------------------
//  helpers
// ---------------------------------------------------------------------------

func (svc *roomService) load(ctx context.Context, slug string) (*room.Room, error) {
	r, err := svc.store.Load(ctx, slug)
	if errors.Is(err, roomstore.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		zap.L().Error("rooms.load", zap.String("slug", slug), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return r, nil
}

func (svc *roomService) save(ctx context.Context, slug string, r *room.Room) error {
	if err := svc.store.Save(ctx, slug, r); err != nil {
		zap.L().Error("rooms.save", zap.String("slug", slug), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (svc *roomService) notify(slug string, r *room.Room) {
	if svc.notifier != nil {
		svc.notifier.RoomUpdated(slug, r)
	}
}
