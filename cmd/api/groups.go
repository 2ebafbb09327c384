package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"voxa/internal/domain/groups"
	"voxa/internal/notifications"
	"voxa/internal/params"
	"voxa/internal/ws"

	"github.com/go-chi/chi/v5"
)

type CreateGroupPayload struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// createGroupHandler godoc
//
//	@Summary		Create a group
//	@Description	Creates a group, generates its invite code and enrolls the creator as admin.
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateGroupPayload	true	"Group"
//	@Success		201		{object}	groups.Group
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups [post]
func (app *application) createGroupHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateGroupPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	group := &groups.Group{
		Name:        payload.Name,
		Description: payload.Description,
		CreatedBy:   user.ID,
	}

	if err := app.store.Groups.Create(r.Context(), group, app.inviteCoder.Encode); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, group); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listMyGroupsHandler godoc
//
//	@Summary		List the viewer's groups
//	@Tags			groups
//	@Produce		json
//	@Success		200	{array}		groups.Group
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups [get]
func (app *application) listMyGroupsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	list, err := app.store.Groups.ListForUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

type JoinGroupPayload struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

// joinGroupHandler godoc
//
//	@Summary		Join a group via invite code
//	@Description	Adds the viewer as a member of the group behind the invite code. Joining twice is a 400.
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		JoinGroupPayload	true	"Invite code"
//	@Success		200		{object}	groups.Group
//	@Failure		400		{object}	error	"Bad code or already a member"
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups/join [post]
func (app *application) joinGroupHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload JoinGroupPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.inviteCoder.Decode(payload.InviteCode); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	group, err := app.store.Groups.GetByInviteCode(r.Context(), payload.InviteCode)
	if err != nil {
		switch {
		case errors.Is(err, groups.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.store.Groups.AddMember(r.Context(), group.ID, user.ID, groups.RoleMember); err != nil {
		switch {
		case errors.Is(err, groups.ErrAlreadyMember):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	memberName := user.FirstName + " " + user.LastName
	groupID, groupName := group.ID, group.Name
	notifications.CallAsync(func(ctx context.Context) error {
		return notifications.SendGroupMemberJoined(ctx, app.push, app.store, groupID, groupName, memberName)
	}, "group_member_joined")

	if err := app.jsonResponse(w, http.StatusOK, group); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getGroupHandler godoc
//
//	@Summary		Get a group
//	@Description	Returns one group with its member count. Members only.
//	@Tags			groups
//	@Produce		json
//	@Param			groupID	path		int	true	"Group ID"
//	@Success		200		{object}	groups.Group
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups/{groupID} [get]
func (app *application) getGroupHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid group ID"))
		return
	}

	group, err := app.store.Groups.GetByID(r.Context(), groupID)
	if err != nil {
		switch {
		case errors.Is(err, groups.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, group); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateGroupPayload struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// updateGroupHandler godoc
//
//	@Summary		Update a group
//	@Description	Updates name/description. Admins only.
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			groupID	path		int					true	"Group ID"
//	@Param			payload	body		UpdateGroupPayload	true	"Fields to update"
//	@Success		200		{object}	groups.Group
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups/{groupID} [patch]
func (app *application) updateGroupHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid group ID"))
		return
	}

	var payload UpdateGroupPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	group, err := app.store.Groups.GetByID(r.Context(), groupID)
	if err != nil {
		switch {
		case errors.Is(err, groups.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if payload.Name != nil {
		group.Name = *payload.Name
	}
	if payload.Description != nil {
		group.Description = payload.Description
	}

	if err := app.store.Groups.Update(r.Context(), group); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, group); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteGroupHandler godoc
//
//	@Summary		Delete a group
//	@Description	Deletes the group; group reviews survive with group_id cleared. Admins only.
//	@Tags			groups
//	@Param			groupID	path		int	true	"Group ID"
//	@Success		204		{string}	string	"No Content"
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups/{groupID} [delete]
func (app *application) deleteGroupHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid group ID"))
		return
	}

	if err := app.store.Groups.Delete(r.Context(), groupID); err != nil {
		switch {
		case errors.Is(err, groups.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listGroupMembersHandler godoc
//
//	@Summary		List group members
//	@Tags			groups
//	@Produce		json
//	@Param			groupID	path		int	true	"Group ID"
//	@Success		200		{array}		groups.Member
//	@Failure		403		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups/{groupID}/members [get]
func (app *application) listGroupMembersHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid group ID"))
		return
	}

	page := params.ParsePagination(r.URL.Query())

	members, err := app.store.Groups.ListMembers(r.Context(), groupID, page.Limit, page.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, members); err != nil {
		app.internalServerError(w, r, err)
	}
}

// leaveGroupHandler godoc
//
//	@Summary		Leave a group
//	@Tags			groups
//	@Param			groupID	path		int	true	"Group ID"
//	@Success		204		{string}	string	"No Content"
//	@Failure		403		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups/{groupID}/leave [post]
func (app *application) leaveGroupHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid group ID"))
		return
	}

	if err := app.store.Groups.RemoveMember(r.Context(), groupID, user.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// removeGroupMemberHandler godoc
//
//	@Summary		Remove a member
//	@Description	Kicks a member out of the group. Admins only.
//	@Tags			groups
//	@Param			groupID	path		int	true	"Group ID"
//	@Param			userID	path		int	true	"User ID to remove"
//	@Success		204		{string}	string	"No Content"
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups/{groupID}/members/{userID} [delete]
func (app *application) removeGroupMemberHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid group ID"))
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid user ID"))
		return
	}

	if err := app.store.Groups.RemoveMember(r.Context(), groupID, userID); err != nil {
		switch {
		case errors.Is(err, groups.ErrNotMember):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listGroupMessagesHandler godoc
//
//	@Summary		Group chat history
//	@Tags			groups
//	@Produce		json
//	@Param			groupID	path		int	true	"Group ID"
//	@Success		200		{array}		groups.Message
//	@Failure		403		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups/{groupID}/messages [get]
func (app *application) listGroupMessagesHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid group ID"))
		return
	}

	page := params.ParsePagination(r.URL.Query())

	messages, err := app.store.Groups.ListMessages(r.Context(), groupID, page.Limit, page.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, messages); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CreateGroupMessagePayload struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// createGroupMessageHandler godoc
//
//	@Summary		Post a chat message
//	@Description	Persists a message and fans it out to the group's open
//	@Description	websockets. Members without a socket get a push instead.
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			groupID	path		int							true	"Group ID"
//	@Param			payload	body		CreateGroupMessagePayload	true	"Message body"
//	@Success		201		{object}	groups.Message
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups/{groupID}/messages [post]
func (app *application) createGroupMessageHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid group ID"))
		return
	}

	var payload CreateGroupMessagePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	group, err := app.store.Groups.GetByID(r.Context(), groupID)
	if err != nil {
		switch {
		case errors.Is(err, groups.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	msg := &groups.Message{
		GroupID:  groupID,
		SenderID: user.ID,
		Body:     payload.Body,
	}
	if err := app.store.Groups.CreateMessage(r.Context(), msg); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	senderName := user.FirstName + " " + user.LastName

	app.hub.SendToGroup(groupID, ws.Message{
		Type:   "chat",
		UserID: user.ID,
		Data: map[string]any{
			"id":          msg.ID,
			"body":        msg.Body,
			"sender_id":   msg.SenderID,
			"sender_name": senderName,
			"created_at":  msg.CreatedAt,
		},
	})

	notifications.CallAsync(func(ctx context.Context) error {
		return notifications.SendGroupMessage(ctx, app.push, app.store, groupID, user.ID, senderName, group.Name)
	}, "group_message")

	if err := app.jsonResponse(w, http.StatusCreated, msg); err != nil {
		app.internalServerError(w, r, err)
	}
}

// groupChatHandler upgrades to a websocket bound to the group's room.
// Inbound chat frames are persisted first and then fanned out, so the
// stored history and what live sockets saw can never diverge. Members
// without an open socket get an Expo push instead.
func (app *application) groupChatHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid group ID"))
		return
	}

	group, err := app.store.Groups.GetByID(r.Context(), groupID)
	if err != nil {
		switch {
		case errors.Is(err, groups.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	senderName := user.FirstName + " " + user.LastName

	err = ws.ServeGroup(app.hub, w, r, user.ID, groupID, func(body string) {
		ctx, cancel := context.WithTimeout(context.Background(), groups.QueryTimeoutDuration)
		defer cancel()

		msg := &groups.Message{
			GroupID:  groupID,
			SenderID: user.ID,
			Body:     body,
		}
		if err := app.store.Groups.CreateMessage(ctx, msg); err != nil {
			app.logger.Errorw("failed to persist chat message", "group_id", groupID, "error", err)
			return
		}

		app.hub.SendToGroup(groupID, ws.Message{
			Type:   "chat",
			UserID: user.ID,
			Data: map[string]any{
				"id":          msg.ID,
				"body":        msg.Body,
				"sender_id":   msg.SenderID,
				"sender_name": senderName,
				"created_at":  msg.CreatedAt,
			},
		})

		notifications.CallAsync(func(ctx context.Context) error {
			return notifications.SendGroupMessage(ctx, app.push, app.store, groupID, user.ID, senderName, group.Name)
		}, "group_message")
	})
	if err != nil {
		app.logger.Errorw("websocket upgrade failed", "group_id", groupID, "error", err)
	}
}
