// Package rooms implements room lifecycle and membership on top of a user
// directory and a generic record store.
//
// Every operation returns a result.Result. Domain failures become 400 results,
// collaborator faults become 500 results carrying the cause; nothing is logged here.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wirechat-rooms/internal/directory"
	"github.com/vovakirdan/wirechat-rooms/internal/result"
	"github.com/vovakirdan/wirechat-rooms/internal/store"
)

var validate = validator.New()

// Service is the room domain service. It holds no state of its own.
type Service struct {
	users   directory.UserDirectory
	records store.RecordStore
	now     func() time.Time
}

// NewService creates a room service over the given collaborators.
func NewService(users directory.UserDirectory, records store.RecordStore) *Service {
	return &Service{
		users:   users,
		records: records,
		now:     time.Now,
	}
}

type failure struct {
	status int
	msg    string
	cause  error
}

func badRequest(msg string) *failure {
	return &failure{status: http.StatusBadRequest, msg: msg}
}

func internal(err error) *failure {
	return &failure{status: http.StatusInternalServerError, msg: MsgInternalError, cause: err}
}

func failed[T any](f *failure) result.Result[T] {
	if f.status >= http.StatusInternalServerError {
		return result.Internal[T](f.msg, f.cause)
	}
	return result.Err[T](f.status, f.msg)
}

// GetHealth is a liveness probe.
func (s *Service) GetHealth(_ context.Context) result.Result[HealthData] {
	return result.Ok(http.StatusOK, HealthData{Message: MsgHealthResponse})
}

// CreateRoom creates a room owned by in.UserID, who becomes its first member.
func (s *Service) CreateRoom(ctx context.Context, in CreateRoomInput) result.Result[RoomData] {
	user, f := s.userByID(ctx, in.UserID)
	if f != nil {
		return failed[RoomData](f)
	}

	name, f := validateName(in.Name)
	if f != nil {
		return failed[RoomData](f)
	}

	now := s.now()
	draft := &Room{
		Name:      name,
		CreatedBy: user.ID,
		Members:   []int64{user.ID},
		CreatedAt: now,
		UpdatedAt: now,
	}

	rec, err := s.records.Add(ctx, CollectionRooms, draft.record())
	if err != nil {
		return failed[RoomData](internal(fmt.Errorf("add room: %w", err)))
	}

	room, err := decodeRoom(rec)
	if err != nil {
		return failed[RoomData](internal(err))
	}
	return result.Ok(http.StatusCreated, RoomData{Room: room})
}

// JoinRoom adds the user with in.UserEmail to the room.
// Checks run in a fixed order: user exists, room exists, user not yet a member.
func (s *Service) JoinRoom(ctx context.Context, in MembershipInput) result.Result[RoomData] {
	user, f := s.userByEmail(ctx, in.UserEmail)
	if f != nil {
		return failed[RoomData](f)
	}

	room, f := s.roomOrFail(ctx, in.RoomID)
	if f != nil {
		return failed[RoomData](f)
	}

	if room.HasMember(user.ID) {
		return failed[RoomData](badRequest(MsgAlreadyMember))
	}

	members := append(append(make([]int64, 0, len(room.Members)+1), room.Members...), user.ID)
	return s.saveMembers(ctx, room.ID, members)
}

// LeaveRoom removes the user with in.UserEmail from the room.
func (s *Service) LeaveRoom(ctx context.Context, in MembershipInput) result.Result[RoomData] {
	user, f := s.userByEmail(ctx, in.UserEmail)
	if f != nil {
		return failed[RoomData](f)
	}

	room, f := s.roomOrFail(ctx, in.RoomID)
	if f != nil {
		return failed[RoomData](f)
	}

	if !room.HasMember(user.ID) {
		return failed[RoomData](badRequest(MsgNotMember))
	}

	return s.saveMembers(ctx, room.ID, lo.Without(room.Members, user.ID))
}

// saveMembers persists a new member list. A room that vanished since it was read is reported as missing.
func (s *Service) saveMembers(ctx context.Context, roomID int64, members []int64) result.Result[RoomData] {
	rec, err := s.records.Update(ctx, CollectionRooms, roomID, store.Record{
		"members":   members,
		"updatedAt": store.FormatTime(s.now()),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return failed[RoomData](badRequest(MsgRoomNotFound))
		}
		return failed[RoomData](internal(fmt.Errorf("update room members: %w", err)))
	}

	room, err := decodeRoom(rec)
	if err != nil {
		return failed[RoomData](internal(err))
	}
	return result.Ok(http.StatusOK, RoomData{Room: room})
}

// GetRoomByID returns the stored room, or nil if there is none.
func (s *Service) GetRoomByID(ctx context.Context, roomID int64) (*Room, error) {
	rec, err := s.records.Get(ctx, CollectionRooms, roomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return decodeRoom(rec)
}

// GetRoom returns a single room.
func (s *Service) GetRoom(ctx context.Context, roomID int64) result.Result[RoomData] {
	room, f := s.roomOrFail(ctx, roomID)
	if f != nil {
		return failed[RoomData](f)
	}
	return result.Ok(http.StatusOK, RoomData{Room: room})
}

// GetRooms lists every room ordered by id.
func (s *Service) GetRooms(ctx context.Context) result.Result[RoomsData] {
	recs, err := s.records.List(ctx, CollectionRooms)
	if err != nil {
		return failed[RoomsData](internal(fmt.Errorf("list rooms: %w", err)))
	}

	rooms := make([]*Room, 0, len(recs))
	for _, rec := range recs {
		room, err := decodeRoom(rec)
		if err != nil {
			return failed[RoomsData](internal(err))
		}
		rooms = append(rooms, room)
	}
	return result.Ok(http.StatusOK, RoomsData{Rooms: rooms})
}

// UpdateRoomDetails applies patch to an existing room. An empty patch writes nothing.
func (s *Service) UpdateRoomDetails(ctx context.Context, roomID int64, patch RoomPatch) result.Result[RoomData] {
	room, f := s.roomOrFail(ctx, roomID)
	if f != nil {
		return failed[RoomData](f)
	}

	if patch.Name == nil {
		return result.Ok(http.StatusOK, RoomData{Room: room})
	}

	name, f := validateName(*patch.Name)
	if f != nil {
		return failed[RoomData](f)
	}

	rec, err := s.records.Update(ctx, CollectionRooms, room.ID, store.Record{
		"name":      name,
		"updatedAt": store.FormatTime(s.now()),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return failed[RoomData](badRequest(MsgRoomNotFound))
		}
		return failed[RoomData](internal(fmt.Errorf("update room: %w", err)))
	}

	updated, err := decodeRoom(rec)
	if err != nil {
		return failed[RoomData](internal(err))
	}
	return result.Ok(http.StatusOK, RoomData{Room: updated})
}

// DeleteRoom removes a room and returns it as it was before deletion.
func (s *Service) DeleteRoom(ctx context.Context, roomID int64) result.Result[RoomData] {
	room, f := s.roomOrFail(ctx, roomID)
	if f != nil {
		return failed[RoomData](f)
	}

	if err := s.records.Delete(ctx, CollectionRooms, room.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return failed[RoomData](badRequest(MsgRoomNotFound))
		}
		return failed[RoomData](internal(fmt.Errorf("delete room: %w", err)))
	}
	return result.Ok(http.StatusOK, RoomData{Room: room})
}

// GetRoomChats returns the chats of a room ordered by creation time.
func (s *Service) GetRoomChats(ctx context.Context, roomID int64) result.Result[ChatsData] {
	var (
		room *Room
		recs []store.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		room, err = s.GetRoomByID(gctx, roomID)
		return err
	})
	g.Go(func() error {
		var err error
		recs, err = s.records.List(gctx, CollectionChats)
		if err != nil {
			return fmt.Errorf("list chats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return failed[ChatsData](internal(err))
	}

	if room == nil {
		return failed[ChatsData](badRequest(MsgRoomNotFound))
	}

	chats := make([]*Chat, 0)
	for _, rec := range recs {
		var c Chat
		if err := store.Decode(rec, &c); err != nil {
			return failed[ChatsData](internal(err))
		}
		if c.RoomID == room.ID {
			chats = append(chats, &c)
		}
	}
	sort.SliceStable(chats, func(i, j int) bool {
		if !chats[i].CreatedAt.Equal(chats[j].CreatedAt) {
			return chats[i].CreatedAt.Before(chats[j].CreatedAt)
		}
		return chats[i].ID < chats[j].ID
	})

	return result.Ok(http.StatusOK, ChatsData{Chats: chats})
}

// PostChat stores a chat written by a member of the room.
func (s *Service) PostChat(ctx context.Context, in PostChatInput) result.Result[ChatData] {
	user, f := s.userByEmail(ctx, in.UserEmail)
	if f != nil {
		return failed[ChatData](f)
	}

	room, f := s.roomOrFail(ctx, in.RoomID)
	if f != nil {
		return failed[ChatData](f)
	}

	if !room.HasMember(user.ID) {
		return failed[ChatData](badRequest(MsgNotMember))
	}

	content := strings.TrimSpace(in.Content)
	if err := validate.Var(content, "required"); err != nil {
		return failed[ChatData](badRequest(MsgContentEmpty))
	}
	if err := validate.Var(content, "max=2000"); err != nil {
		return failed[ChatData](badRequest(MsgContentTooLong))
	}

	rec, err := s.records.Add(ctx, CollectionChats, ChatRecord(room.ID, user.ID, content, s.now()))
	if err != nil {
		return failed[ChatData](internal(fmt.Errorf("add chat: %w", err)))
	}

	var chat Chat
	if err := store.Decode(rec, &chat); err != nil {
		return failed[ChatData](internal(err))
	}
	return result.Ok(http.StatusCreated, ChatData{Chat: &chat})
}

func (s *Service) userByID(ctx context.Context, id int64) (*directory.User, *failure) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			return nil, badRequest(MsgUserNotFound)
		}
		return nil, internal(fmt.Errorf("get user by id: %w", err))
	}
	return user, nil
}

func (s *Service) userByEmail(ctx context.Context, email string) (*directory.User, *failure) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			return nil, badRequest(MsgUserNotFound)
		}
		return nil, internal(fmt.Errorf("get user by email: %w", err))
	}
	return user, nil
}

func (s *Service) roomOrFail(ctx context.Context, roomID int64) (*Room, *failure) {
	room, err := s.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, internal(err)
	}
	if room == nil {
		return nil, badRequest(MsgRoomNotFound)
	}
	return room, nil
}

func validateName(name string) (string, *failure) {
	name = strings.TrimSpace(name)
	if err := validate.Var(name, "required"); err != nil {
		return "", badRequest(MsgNameRequired)
	}
	if err := validate.Var(name, "max=64"); err != nil {
		return "", badRequest(MsgNameTooLong)
	}
	return name, nil
}

func decodeRoom(rec store.Record) (*Room, error) {
	var room Room
	if err := store.Decode(rec, &room); err != nil {
		return nil, err
	}
	if room.Members == nil {
		room.Members = []int64{}
	}
	return &room, nil
}
