package rooms

import (
	"time"

	"github.com/samber/lo"

	"github.com/vovakirdan/wirechat-rooms/internal/store"
)

// Record-store collections owned by the room service.
const (
	CollectionRooms = "rooms"
	CollectionChats = "chats"
)

// Room is a named group of members. The creator is always the first member.
type Room struct {
	ID        int64     `json:"id" mapstructure:"id"`
	Name      string    `json:"name" mapstructure:"name"`
	CreatedBy int64     `json:"createdBy" mapstructure:"createdBy"`
	Members   []int64   `json:"members" mapstructure:"members"`
	CreatedAt time.Time `json:"createdAt" mapstructure:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" mapstructure:"updatedAt"`
}

// HasMember reports whether userID is in the room.
func (r *Room) HasMember(userID int64) bool {
	return lo.Contains(r.Members, userID)
}

func (r *Room) record() store.Record {
	return store.Record{
		"name":      r.Name,
		"createdBy": r.CreatedBy,
		"members":   append([]int64{}, r.Members...),
		"createdAt": store.FormatTime(r.CreatedAt),
		"updatedAt": store.FormatTime(r.UpdatedAt),
	}
}

// Chat is a message posted in a room.
type Chat struct {
	ID        int64     `json:"id" mapstructure:"id"`
	RoomID    int64     `json:"roomId" mapstructure:"roomId"`
	UserID    int64     `json:"userId" mapstructure:"userId"`
	Content   string    `json:"content" mapstructure:"content"`
	CreatedAt time.Time `json:"createdAt" mapstructure:"createdAt"`
}

// ChatRecord builds the stored form of a chat. The id is assigned by the store.
func ChatRecord(roomID, userID int64, content string, at time.Time) store.Record {
	return store.Record{
		"roomId":    roomID,
		"userId":    userID,
		"content":   content,
		"createdAt": store.FormatTime(at),
	}
}

// CreateRoomInput is the input of CreateRoom.
type CreateRoomInput struct {
	Name   string `json:"name"`
	UserID int64  `json:"userId"`
}

// MembershipInput is the input of JoinRoom and LeaveRoom.
type MembershipInput struct {
	RoomID    int64  `json:"roomId"`
	UserEmail string `json:"userEmail"`
}

// PostChatInput is the input of PostChat.
type PostChatInput struct {
	RoomID    int64  `json:"roomId"`
	UserEmail string `json:"userEmail"`
	Content   string `json:"content"`
}

// RoomPatch lists the room fields that may be changed. Nil fields are left alone.
type RoomPatch struct {
	Name *string `json:"name,omitempty"`
}

// HealthData is the payload of GetHealth.
type HealthData struct {
	Message string `json:"message"`
}

// RoomData wraps a single room.
type RoomData struct {
	Room *Room `json:"room"`
}

// RoomsData wraps a list of rooms.
type RoomsData struct {
	Rooms []*Room `json:"rooms"`
}

// ChatData wraps a single chat.
type ChatData struct {
	Chat *Chat `json:"chat"`
}

// ChatsData wraps the chats of a room.
type ChatsData struct {
	Chats []*Chat `json:"chats"`
}
