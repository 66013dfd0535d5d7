package rooms

// Messages returned in failed results. Callers and tests match on them, so they must not change.
const (
	MsgUserNotFound   = "This user does not exists in the system"
	MsgRoomNotFound   = "This room does not exist in the system"
	MsgAlreadyMember  = "This user is already in this room"
	MsgNotMember      = "This user is not in this room"
	MsgNameRequired   = "Room name is required"
	MsgNameTooLong    = "Room name is too long"
	MsgContentEmpty   = "Chat content is required"
	MsgContentTooLong = "Chat content is too long"
	MsgInternalError  = "Internal server error"
	MsgHealthResponse = "pong"
)
