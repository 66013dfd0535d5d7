package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-rooms/internal/directory"
	"github.com/vovakirdan/wirechat-rooms/internal/result"
	"github.com/vovakirdan/wirechat-rooms/internal/rooms"
)

// UserData wraps a created user.
type UserData struct {
	User *directory.User `json:"user"`
}

func (c *CLI) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the service answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return emit(c, "health", c.app.Rooms.GetHealth(cmd.Context()))
		},
	}
}

func (c *CLI) roomsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage rooms",
	}
	cmd.AddCommand(
		c.roomsCreateCommand(),
		c.roomsListCommand(),
		c.roomsGetCommand(),
		c.roomsUpdateCommand(),
		c.roomsDeleteCommand(),
		c.roomsMembershipCommand("join", "Add a user to a room", "rooms.join"),
		c.roomsMembershipCommand("leave", "Remove a user from a room", "rooms.leave"),
		c.roomsChatsCommand(),
	)
	return cmd
}

func (c *CLI) roomsCreateCommand() *cobra.Command {
	var in rooms.CreateRoomInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room owned by a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return emit(c, "rooms.create", c.app.Rooms.CreateRoom(cmd.Context(), in))
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "room name")
	cmd.Flags().Int64Var(&in.UserID, "user-id", 0, "id of the creating user")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}

func (c *CLI) roomsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return emit(c, "rooms.list", c.app.Rooms.GetRooms(cmd.Context()))
		},
	}
}

func (c *CLI) roomsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room-id>",
		Short: "Show a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return emit(c, "rooms.get", c.app.Rooms.GetRoom(cmd.Context(), id))
		},
	}
}

func (c *CLI) roomsUpdateCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "update <room-id>",
		Short: "Change room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var patch rooms.RoomPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			return emit(c, "rooms.update", c.app.Rooms.UpdateRoomDetails(cmd.Context(), id, patch))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new room name")
	return cmd
}

func (c *CLI) roomsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <room-id>",
		Short: "Delete a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return emit(c, "rooms.delete", c.app.Rooms.DeleteRoom(cmd.Context(), id))
		},
	}
}

func (c *CLI) roomsMembershipCommand(use, short, op string) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   use + " <room-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in := rooms.MembershipInput{RoomID: id, UserEmail: email}
			if use == "join" {
				return emit(c, op, c.app.Rooms.JoinRoom(cmd.Context(), in))
			}
			return emit(c, op, c.app.Rooms.LeaveRoom(cmd.Context(), in))
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *CLI) roomsChatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chats <room-id>",
		Short: "List the chats of a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return emit(c, "rooms.chats", c.app.Rooms.GetRoomChats(cmd.Context(), id))
		},
	}
}

func (c *CLI) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the local user directory",
	}

	var email, name, password string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.app.Users.CreateUser(cmd.Context(), email, name, password)
			return emit(c, "users.add", userResult(user, err))
		},
	}
	add.Flags().StringVar(&email, "email", "", "email address")
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().StringVar(&password, "password", "", "password (min 6 characters)")
	_ = add.MarkFlagRequired("email")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)
	return cmd
}

func userResult(user *directory.User, err error) result.Result[UserData] {
	switch {
	case err == nil:
		return result.Ok(http.StatusCreated, UserData{User: user})
	case errors.Is(err, directory.ErrEmailTaken),
		errors.Is(err, directory.ErrInvalidEmail),
		errors.Is(err, directory.ErrInvalidName),
		errors.Is(err, directory.ErrInvalidPassword):
		return result.Err[UserData](http.StatusBadRequest, err.Error())
	default:
		return result.Internal[UserData](rooms.MsgInternalError, fmt.Errorf("create user: %w", err))
	}
}

func (c *CLI) chatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Write chats into rooms",
	}

	var in rooms.PostChatInput
	post := &cobra.Command{
		Use:   "post <room-id>",
		Short: "Post a chat as a room member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in.RoomID = id
			return emit(c, "chats.post", c.app.Rooms.PostChat(cmd.Context(), in))
		},
	}
	post.Flags().StringVar(&in.UserEmail, "email", "", "email of the author")
	post.Flags().StringVar(&in.Content, "content", "", "chat text")
	_ = post.MarkFlagRequired("email")

	cmd.AddCommand(post)
	return cmd
}
