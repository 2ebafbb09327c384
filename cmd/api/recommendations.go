package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"voxa/internal/domain/recommendations"
	"voxa/internal/notifications"
	"voxa/internal/params"

	"github.com/go-chi/chi/v5"
)

type CreateRecommendationPayload struct {
	RecipientID int64   `json:"recipient_id" validate:"required"`
	PlaceID     string  `json:"place_id" validate:"required,max=255"`
	PlaceName   string  `json:"place_name" validate:"required,max=255"`
	Note        *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// createRecommendationHandler godoc
//
//	@Summary		Recommend a place to another user
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateRecommendationPayload	true	"Recommendation"
//	@Success		201		{object}	recommendations.Recommendation
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/recommendations [post]
func (app *application) createRecommendationHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateRecommendationPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.RecipientID == user.ID {
		app.badRequestResponse(w, r, errors.New("you cannot recommend a place to yourself"))
		return
	}

	// Surface bad recipient IDs as 404 rather than a FK violation.
	if _, err := app.store.Users.GetByID(r.Context(), payload.RecipientID); err != nil {
		app.notFoundResponse(w, r, fmt.Errorf("recipient not found"))
		return
	}

	rec := &recommendations.Recommendation{
		SenderID:    user.ID,
		RecipientID: payload.RecipientID,
		PlaceID:     payload.PlaceID,
		PlaceName:   payload.PlaceName,
		Note:        payload.Note,
	}

	if err := app.store.Recommendations.Create(r.Context(), rec); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	senderName := user.FirstName + " " + user.LastName
	notifications.CallAsync(func(ctx context.Context) error {
		return notifications.SendRecommendation(ctx, app.push, app.store, rec.RecipientID, senderName, rec.PlaceName)
	}, "recommendation push")

	if err := app.jsonResponse(w, http.StatusCreated, rec); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listRecommendationsHandler godoc
//
//	@Summary		List recommendations received by the viewer
//	@Tags			recommendations
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Offset"
//	@Success		200		{array}		recommendations.Recommendation
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/recommendations [get]
func (app *application) listRecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	pg := params.ParsePagination(r.URL.Query())

	list, err := app.store.Recommendations.ListReceived(r.Context(), user.ID, pg.Limit, pg.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// markRecommendationReadHandler godoc
//
//	@Summary		Mark a received recommendation as read
//	@Tags			recommendations
//	@Param			recommendationID	path		int	true	"Recommendation ID"
//	@Success		204					{string}	string	"No Content"
//	@Failure		404					{object}	error
//	@Security		ApiKeyAuth
//	@Router			/recommendations/{recommendationID}/read [patch]
func (app *application) markRecommendationReadHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	recID, err := strconv.ParseInt(chi.URLParam(r, "recommendationID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid recommendation ID"))
		return
	}

	if err := app.store.Recommendations.MarkRead(r.Context(), recID, user.ID); err != nil {
		switch {
		case errors.Is(err, recommendations.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteRecommendationHandler godoc
//
//	@Summary		Dismiss a received recommendation
//	@Tags			recommendations
//	@Param			recommendationID	path		int	true	"Recommendation ID"
//	@Success		204					{string}	string	"No Content"
//	@Failure		404					{object}	error
//	@Security		ApiKeyAuth
//	@Router			/recommendations/{recommendationID} [delete]
func (app *application) deleteRecommendationHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	recID, err := strconv.ParseInt(chi.URLParam(r, "recommendationID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid recommendation ID"))
		return
	}

	if err := app.store.Recommendations.Delete(r.Context(), recID, user.ID); err != nil {
		switch {
		case errors.Is(err, recommendations.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
