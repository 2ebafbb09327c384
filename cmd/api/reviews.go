package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"voxa/internal/domain/likes"
	"voxa/internal/domain/reviews"
	"voxa/internal/feed"
	"voxa/internal/geo"
	"voxa/internal/notifications"
	"voxa/internal/params"

	"github.com/go-chi/chi/v5"
)

// feedOptions parses the shared review-listing inputs: the page window
// and the optional userLat/userLng reference point. Values that don't
// parse as floats are a 400; values that parse but aren't finite (NaN,
// Inf) simply disable distance annotation, matching the silent-degrade
// rule for distance.
func (app *application) feedOptions(r *http.Request) (feed.Options, error) {
	q := r.URL.Query()

	opts := feed.Options{Page: params.ParsePagination(q)}

	if user := getUserFromContext(r); user != nil {
		opts.Viewer = &user.ID
	}

	latStr, lngStr := q.Get("userLat"), q.Get("userLng")
	if latStr == "" && lngStr == "" {
		return opts, nil
	}
	if latStr == "" || lngStr == "" {
		return opts, errors.New("userLat and userLng must be supplied together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return opts, fmt.Errorf("invalid userLat: %q", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return opts, fmt.Errorf("invalid userLng: %q", lngStr)
	}

	point := geo.Point{Lat: lat, Lng: lng}
	if point.Valid() {
		opts.Point = &point
	}
	return opts, nil
}

// communityFeedHandler godoc
//
//	@Summary		Community review feed
//	@Description	All public reviews, newest first. Anonymous viewers welcome; a token personalizes is_liked.
//	@Tags			reviews
//	@Produce		json
//	@Param			userLat	query		number	false	"Viewer latitude for distance annotation"
//	@Param			userLng	query		number	false	"Viewer longitude for distance annotation"
//	@Param			page	query		int		false	"Page number"
//	@Param			limit	query		int		false	"Page size (max 30)"
//	@Success		200		{object}	feed.Page
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Router			/reviews/community [get]
func (app *application) communityFeedHandler(w http.ResponseWriter, r *http.Request) {
	opts, err := app.feedOptions(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	page, err := feed.Community(r.Context(), app.store, opts)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, page); err != nil {
		app.internalServerError(w, r, err)
	}
}

// followingFeedHandler godoc
//
//	@Summary		Following review feed
//	@Description	Public reviews authored by users the viewer follows, newest first.
//	@Tags			reviews
//	@Produce		json
//	@Param			userLat	query		number	false	"Viewer latitude for distance annotation"
//	@Param			userLng	query		number	false	"Viewer longitude for distance annotation"
//	@Success		200		{object}	feed.Page
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/reviews/following [get]
func (app *application) followingFeedHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	opts, err := app.feedOptions(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	page, err := feed.Following(r.Context(), app.store, user.ID, opts)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, page); err != nil {
		app.internalServerError(w, r, err)
	}
}

// placeReviewsHandler godoc
//
//	@Summary		Reviews for one place
//	@Description	Public reviews of a single external place, newest first. Open to anonymous viewers.
//	@Tags			reviews
//	@Produce		json
//	@Param			placeID	path		string	true	"External place ID"
//	@Param			userLat	query		number	false	"Viewer latitude for distance annotation"
//	@Param			userLng	query		number	false	"Viewer longitude for distance annotation"
//	@Success		200		{object}	feed.Page
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Router			/reviews/place/{placeID} [get]
func (app *application) placeReviewsHandler(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")
	if placeID == "" {
		app.badRequestResponse(w, r, errors.New("missing place ID"))
		return
	}

	opts, err := app.feedOptions(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	page, err := feed.ByPlace(r.Context(), app.store, placeID, opts)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, page); err != nil {
		app.internalServerError(w, r, err)
	}
}

// groupReviewsHandler godoc
//
//	@Summary		Group review feed
//	@Description	Every review attached to the group, public or not. Members only; mounted behind the membership gate.
//	@Tags			reviews
//	@Produce		json
//	@Param			groupID	path		int		true	"Group ID"
//	@Param			userLat	query		number	false	"Viewer latitude for distance annotation"
//	@Param			userLng	query		number	false	"Viewer longitude for distance annotation"
//	@Success		200		{object}	feed.Page
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/groups/{groupID}/reviews [get]
func (app *application) groupReviewsHandler(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid group ID"))
		return
	}

	opts, err := app.feedOptions(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	page, err := feed.ByGroup(r.Context(), app.store, groupID, opts)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, page); err != nil {
		app.internalServerError(w, r, err)
	}
}

type LocationPayload struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address,omitempty" validate:"omitempty,max=255"`
}

type CreateReviewPayload struct {
	PlaceID   string           `json:"place_id" validate:"required,max=255"`
	PlaceName string           `json:"place_name" validate:"required,max=255"`
	Rating    int              `json:"rating" validate:"required,min=1,max=5"`
	Comment   string           `json:"comment" validate:"max=2000"`
	IsPublic  *bool            `json:"is_public,omitempty"`
	GroupID   *int64           `json:"group_id,omitempty"`
	Location  *LocationPayload `json:"location,omitempty"`
}

// createReviewHandler godoc
//
//	@Summary		Create a review
//	@Description	Creates a review of a place. A group_id makes it visible to that group's members and requires membership.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateReviewPayload	true	"Review"
//	@Success		201		{object}	reviews.Review
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error	"Not a member of the target group"
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review := &reviews.Review{
		AuthorID:  user.ID,
		PlaceID:   payload.PlaceID,
		PlaceName: payload.PlaceName,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
		IsPublic:  true,
		GroupID:   payload.GroupID,
	}
	if payload.IsPublic != nil {
		review.IsPublic = *payload.IsPublic
	}

	if payload.Location != nil {
		point := geo.Point{Lat: payload.Location.Lat, Lng: payload.Location.Lng}
		if !point.Valid() || math.Abs(point.Lat) > 90 || math.Abs(point.Lng) > 180 {
			app.badRequestResponse(w, r, errors.New("location must carry valid coordinates"))
			return
		}
		review.Location = &reviews.Location{
			Lat:              payload.Location.Lat,
			Lng:              payload.Location.Lng,
			FormattedAddress: payload.Location.FormattedAddress,
		}
	}

	if payload.GroupID != nil {
		isMember, err := app.store.Groups.IsMember(r.Context(), *payload.GroupID, user.ID)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		if !isMember {
			app.forbiddenResponse(w, r)
			return
		}
	}

	if err := app.store.Reviews.Create(r.Context(), review); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getReviewHandler godoc
//
//	@Summary		Get one review
//	@Description	Returns a single review with its like stats. Private reviews are visible to the author and, for group reviews, the group's members.
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int	true	"Review ID"
//	@Success		200			{object}	feed.Item
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [get]
func (app *application) getReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid review ID"))
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if !review.IsPublic && review.AuthorID != user.ID {
		visible := false
		if review.GroupID != nil {
			visible, err = app.store.Groups.IsMember(r.Context(), *review.GroupID, user.ID)
			if err != nil {
				app.internalServerError(w, r, err)
				return
			}
		}
		if !visible {
			app.forbiddenResponse(w, r)
			return
		}
	}

	count, err := app.store.Likes.Count(r.Context(), reviewID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	hasLiked, err := app.store.Likes.HasLiked(r.Context(), reviewID, user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	item := feed.Item{
		Review:  *review,
		Likes:   count,
		IsLiked: hasLiked,
	}

	if err := app.jsonResponse(w, http.StatusOK, item); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateReviewPayload struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// updateReviewHandler godoc
//
//	@Summary		Edit a review
//	@Description	Updates rating and/or comment. Author only; place and location are immutable.
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			reviewID	path		int					true	"Review ID"
//	@Param			payload		body		UpdateReviewPayload	true	"Fields to update"
//	@Success		200			{object}	reviews.Review
//	@Failure		400			{object}	error
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [patch]
func (app *application) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid review ID"))
		return
	}

	var payload UpdateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.Rating == nil && payload.Comment == nil {
		app.badRequestResponse(w, r, errors.New("no fields to update"))
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if review.AuthorID != user.ID {
		app.forbiddenResponse(w, r)
		return
	}

	if payload.Rating != nil {
		review.Rating = *payload.Rating
	}
	if payload.Comment != nil {
		review.Comment = *payload.Comment
	}

	if err := app.store.Reviews.Update(r.Context(), review); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteReviewHandler godoc
//
//	@Summary		Delete a review
//	@Description	Deletes a review and its likes (cascade). Author only.
//	@Tags			reviews
//	@Param			reviewID	path		int	true	"Review ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID} [delete]
func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid review ID"))
		return
	}

	isOwner, err := app.store.Reviews.IsOwner(r.Context(), reviewID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	if !isOwner {
		app.forbiddenResponse(w, r)
		return
	}

	if err := app.store.Reviews.Delete(r.Context(), reviewID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// likeReviewHandler godoc
//
//	@Summary		Like a review
//	@Description	Adds the viewer's like. Liking twice is a 400 and leaves the count unchanged.
//	@Tags			reviews
//	@Produce		json
//	@Param			reviewID	path		int	true	"Review ID"
//	@Success		201			{object}	map[string]string
//	@Failure		400			{object}	error	"Already liked"
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/like [post]
func (app *application) likeReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid review ID"))
		return
	}

	if err := app.store.Likes.Like(r.Context(), reviewID, user.ID); err != nil {
		switch {
		case errors.Is(err, likes.ErrAlreadyLiked):
			app.conflictResponse(w, r, err)
		case errors.Is(err, likes.ErrReviewNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Tell the author, unless they liked their own review.
	if review, err := app.store.Reviews.GetByID(r.Context(), reviewID); err == nil && review.AuthorID != user.ID {
		likerName := user.FirstName + " " + user.LastName
		authorID, placeName := review.AuthorID, review.PlaceName
		notifications.CallAsync(func(ctx context.Context) error {
			return notifications.SendReviewLiked(ctx, app.push, app.store, authorID, reviewID, likerName, placeName)
		}, "review_liked")
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string]string{"message": "review liked"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// unlikeReviewHandler godoc
//
//	@Summary		Unlike a review
//	@Description	Removes the viewer's like. Unliking a review that was never liked is a no-op.
//	@Tags			reviews
//	@Param			reviewID	path		int	true	"Review ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		400			{object}	error
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/like [delete]
func (app *application) unlikeReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid review ID"))
		return
	}

	if err := app.store.Likes.Unlike(r.Context(), reviewID, user.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
