package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"voxa/internal/domain/followers"
	"voxa/internal/domain/users"
	"voxa/internal/feed"
	"voxa/internal/notifications"
	"voxa/internal/params"

	"github.com/go-chi/chi/v5"
)

// getCurrentUserHandler godoc
//
//	@Summary		Get the logged-in user
//	@Description	Returns the profile of the user behind the token.
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	users.User
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/me [get]
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateProfilePayload struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=50"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	HomeCity  *string `json:"home_city,omitempty" validate:"omitempty,max=100"`
}

// updateProfileHandler godoc
//
//	@Summary		Update profile
//	@Description	Partially updates the logged-in user's profile fields.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		UpdateProfilePayload	true	"Fields to update"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/me [patch]
func (app *application) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload UpdateProfilePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	updates := map[string]any{}
	if payload.FirstName != nil {
		updates["first_name"] = *payload.FirstName
	}
	if payload.LastName != nil {
		updates["last_name"] = *payload.LastName
	}
	if payload.Bio != nil {
		updates["bio"] = *payload.Bio
	}
	if payload.HomeCity != nil {
		updates["home_city"] = *payload.HomeCity
	}

	if len(updates) == 0 {
		app.badRequestResponse(w, r, errors.New("no fields to update"))
		return
	}

	if err := app.store.Users.UpdateProfile(r.Context(), user.ID, updates); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "profile updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteUserAccountHandler godoc
//
//	@Summary		Delete own account
//	@Description	Deletes the logged-in user's account and everything cascading from it.
//	@Tags			users
//	@Success		204	{string}	string	"No Content"
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/me [delete]
func (app *application) deleteUserAccountHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := app.store.Users.Delete(r.Context(), user.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UserProfile is a public profile card with the follow-graph numbers
// already resolved for the viewer.
type UserProfile struct {
	*users.User
	Followers   int  `json:"followers"`
	Following   int  `json:"following"`
	IsFollowing bool `json:"is_following"`
}

// getUserProfileHandler godoc
//
//	@Summary		Get a user's profile
//	@Description	Returns a public profile with follower counts and whether the viewer follows them.
//	@Tags			users
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Success		200		{object}	UserProfile
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/{userID} [get]
func (app *application) getUserProfileHandler(w http.ResponseWriter, r *http.Request) {
	viewer := getUserFromContext(r)

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid user ID"))
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		switch err {
		case users.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	followerCount, followingCount, err := app.store.Followers.Counts(r.Context(), userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	isFollowing := false
	if viewer.ID != userID {
		isFollowing, err = app.store.Followers.IsFollowing(r.Context(), viewer.ID, userID)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	profile := UserProfile{
		User:        user,
		Followers:   followerCount,
		Following:   followingCount,
		IsFollowing: isFollowing,
	}

	if err := app.jsonResponse(w, http.StatusOK, profile); err != nil {
		app.internalServerError(w, r, err)
	}
}

// followUserHandler godoc
//
//	@Summary		Follow a user
//	@Description	Adds a directed follow edge from the viewer to the target user.
//	@Tags			users
//	@Produce		json
//	@Param			userID	path		int	true	"User ID to follow"
//	@Success		204		{string}	string	"No Content"
//	@Failure		400		{object}	error	"Self-follow or already following"
//	@Failure		404		{object}	error	"Target user does not exist"
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/{userID}/follow [put]
func (app *application) followUserHandler(w http.ResponseWriter, r *http.Request) {
	follower := getUserFromContext(r)

	followedID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid user ID"))
		return
	}

	if followedID == follower.ID {
		app.badRequestResponse(w, r, errors.New("you cannot follow yourself"))
		return
	}

	if err := app.store.Followers.Follow(r.Context(), follower.ID, followedID); err != nil {
		switch {
		case errors.Is(err, followers.ErrAlreadyFollowing):
			app.conflictResponse(w, r, err)
		case errors.Is(err, followers.ErrUserNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	followerName := follower.FirstName + " " + follower.LastName
	notifications.CallAsync(func(ctx context.Context) error {
		return notifications.SendNewFollower(ctx, app.push, app.store, followedID, follower.ID, followerName)
	}, "new_follower")

	w.WriteHeader(http.StatusNoContent)
}

// unfollowUserHandler godoc
//
//	@Summary		Unfollow a user
//	@Description	Removes the follow edge. Unfollowing someone you don't follow is a no-op.
//	@Tags			users
//	@Produce		json
//	@Param			userID	path		int	true	"User ID to unfollow"
//	@Success		204		{string}	string	"No Content"
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/{userID}/unfollow [put]
func (app *application) unfollowUserHandler(w http.ResponseWriter, r *http.Request) {
	follower := getUserFromContext(r)

	followedID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid user ID"))
		return
	}

	if err := app.store.Followers.Unfollow(r.Context(), follower.ID, followedID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listFollowersHandler godoc
//
//	@Summary		List a user's followers
//	@Tags			users
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Success		200		{array}		followers.UserSummary
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/{userID}/followers [get]
func (app *application) listFollowersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid user ID"))
		return
	}

	page := params.ParsePagination(r.URL.Query())

	list, err := app.store.Followers.ListFollowers(r.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listFollowingHandler godoc
//
//	@Summary		List who a user follows
//	@Tags			users
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Success		200		{array}		followers.UserSummary
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/{userID}/following [get]
func (app *application) listFollowingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid user ID"))
		return
	}

	page := params.ParsePagination(r.URL.Query())

	list, err := app.store.Followers.ListFollowing(r.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listUserReviewsHandler godoc
//
//	@Summary		List a user's reviews
//	@Description	Public reviews by one author; the author additionally sees their private ones.
//	@Tags			users
//	@Produce		json
//	@Param			userID	path		int		true	"User ID"
//	@Param			userLat	query		number	false	"Viewer latitude for distance annotation"
//	@Param			userLng	query		number	false	"Viewer longitude for distance annotation"
//	@Success		200		{object}	feed.Page
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/{userID}/reviews [get]
func (app *application) listUserReviewsHandler(w http.ResponseWriter, r *http.Request) {
	viewer := getUserFromContext(r)

	authorID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid user ID"))
		return
	}

	opts, err := app.feedOptions(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	includePrivate := viewer.ID == authorID

	page, err := feed.ByAuthor(r.Context(), app.store, authorID, includePrivate, opts)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, page); err != nil {
		app.internalServerError(w, r, err)
	}
}
