package main

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"voxa/internal/domain/trips"

	"github.com/go-chi/chi/v5"
)

type CreateTripPayload struct {
	Name        string     `json:"name" validate:"required,min=1,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsPublic    bool       `json:"is_public"`
}

// createTripHandler godoc
//
//	@Summary		Create a trip
//	@Tags			trips
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateTripPayload	true	"Trip"
//	@Success		201		{object}	trips.Trip
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trips [post]
func (app *application) createTripHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	var payload CreateTripPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.StartDate != nil && payload.EndDate != nil && payload.EndDate.Before(*payload.StartDate) {
		app.badRequestResponse(w, r, errors.New("end_date must not be before start_date"))
		return
	}

	trip := &trips.Trip{
		OwnerID:     user.ID,
		Name:        payload.Name,
		Description: payload.Description,
		StartDate:   payload.StartDate,
		EndDate:     payload.EndDate,
		IsPublic:    payload.IsPublic,
	}

	if err := app.store.Trips.Create(r.Context(), trip); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, trip); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listTripsHandler godoc
//
//	@Summary		List the viewer's trips
//	@Tags			trips
//	@Produce		json
//	@Success		200	{array}		trips.Trip
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trips [get]
func (app *application) listTripsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	list, err := app.store.Trips.ListForUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// tripForOwner loads the trip and enforces that the viewer owns it.
// Public trips are readable by anyone; everything else is 403.
func (app *application) tripForOwner(w http.ResponseWriter, r *http.Request, readOnly bool) *trips.Trip {
	user := getUserFromContext(r)

	tripID, err := strconv.ParseInt(chi.URLParam(r, "tripID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid trip ID"))
		return nil
	}

	trip, err := app.store.Trips.GetByID(r.Context(), tripID)
	if err != nil {
		switch {
		case errors.Is(err, trips.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return nil
	}

	if trip.OwnerID != user.ID && !(readOnly && trip.IsPublic) {
		app.forbiddenResponse(w, r)
		return nil
	}

	return trip
}

// getTripHandler godoc
//
//	@Summary		Get a trip
//	@Tags			trips
//	@Produce		json
//	@Param			tripID	path		int	true	"Trip ID"
//	@Success		200		{object}	trips.Trip
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trips/{tripID} [get]
func (app *application) getTripHandler(w http.ResponseWriter, r *http.Request) {
	trip := app.tripForOwner(w, r, true)
	if trip == nil {
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, trip); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateTripPayload struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=1000"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsPublic    *bool      `json:"is_public,omitempty"`
}

// updateTripHandler godoc
//
//	@Summary		Update a trip
//	@Tags			trips
//	@Accept			json
//	@Produce		json
//	@Param			tripID	path		int					true	"Trip ID"
//	@Param			payload	body		UpdateTripPayload	true	"Fields to update"
//	@Success		200		{object}	trips.Trip
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trips/{tripID} [patch]
func (app *application) updateTripHandler(w http.ResponseWriter, r *http.Request) {
	trip := app.tripForOwner(w, r, false)
	if trip == nil {
		return
	}

	var payload UpdateTripPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.Name != nil {
		trip.Name = *payload.Name
	}
	if payload.Description != nil {
		trip.Description = payload.Description
	}
	if payload.StartDate != nil {
		trip.StartDate = payload.StartDate
	}
	if payload.EndDate != nil {
		trip.EndDate = payload.EndDate
	}
	if payload.IsPublic != nil {
		trip.IsPublic = *payload.IsPublic
	}

	if trip.StartDate != nil && trip.EndDate != nil && trip.EndDate.Before(*trip.StartDate) {
		app.badRequestResponse(w, r, errors.New("end_date must not be before start_date"))
		return
	}

	if err := app.store.Trips.Update(r.Context(), trip); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, trip); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteTripHandler godoc
//
//	@Summary		Delete a trip
//	@Tags			trips
//	@Param			tripID	path		int	true	"Trip ID"
//	@Success		204		{string}	string	"No Content"
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trips/{tripID} [delete]
func (app *application) deleteTripHandler(w http.ResponseWriter, r *http.Request) {
	trip := app.tripForOwner(w, r, false)
	if trip == nil {
		return
	}

	if err := app.store.Trips.Delete(r.Context(), trip.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type AddTripPlacePayload struct {
	PlaceID   string   `json:"place_id" validate:"required,max=255"`
	PlaceName string   `json:"place_name" validate:"required,max=255"`
	Notes     *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// addTripPlaceHandler godoc
//
//	@Summary		Add a stop to a trip
//	@Description	Appends a place at the end of the itinerary.
//	@Tags			trips
//	@Accept			json
//	@Produce		json
//	@Param			tripID	path		int					true	"Trip ID"
//	@Param			payload	body		AddTripPlacePayload	true	"Place"
//	@Success		201		{object}	trips.Place
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trips/{tripID}/places [post]
func (app *application) addTripPlaceHandler(w http.ResponseWriter, r *http.Request) {
	trip := app.tripForOwner(w, r, false)
	if trip == nil {
		return
	}

	var payload AddTripPlacePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if (payload.Latitude == nil) != (payload.Longitude == nil) {
		app.badRequestResponse(w, r, errors.New("latitude and longitude must be supplied together"))
		return
	}
	if payload.Latitude != nil && (math.Abs(*payload.Latitude) > 90 || math.Abs(*payload.Longitude) > 180) {
		app.badRequestResponse(w, r, errors.New("coordinates out of range"))
		return
	}

	place := &trips.Place{
		TripID:    trip.ID,
		PlaceID:   payload.PlaceID,
		PlaceName: payload.PlaceName,
		Notes:     payload.Notes,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	}

	if err := app.store.Trips.AddPlace(r.Context(), place); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, place); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listTripPlacesHandler godoc
//
//	@Summary		List a trip's itinerary
//	@Tags			trips
//	@Produce		json
//	@Param			tripID	path		int	true	"Trip ID"
//	@Success		200		{array}		trips.Place
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trips/{tripID}/places [get]
func (app *application) listTripPlacesHandler(w http.ResponseWriter, r *http.Request) {
	trip := app.tripForOwner(w, r, true)
	if trip == nil {
		return
	}

	places, err := app.store.Trips.ListPlaces(r.Context(), trip.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, places); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateTripPlacePayload struct {
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Position *int    `json:"position,omitempty" validate:"omitempty,min=1"`
}

// updateTripPlaceHandler godoc
//
//	@Summary		Edit a stop
//	@Description	Updates a stop's notes and/or moves it within the itinerary.
//	@Description	A position beyond the ends is clamped.
//	@Tags			trips
//	@Accept			json
//	@Param			tripID	path		int						true	"Trip ID"
//	@Param			placeID	path		int						true	"Itinerary row ID"
//	@Param			payload	body		UpdateTripPlacePayload	true	"Fields to update"
//	@Success		204		{string}	string	"No Content"
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trips/{tripID}/places/{placeID} [patch]
func (app *application) updateTripPlaceHandler(w http.ResponseWriter, r *http.Request) {
	trip := app.tripForOwner(w, r, false)
	if trip == nil {
		return
	}

	placeRowID, err := strconv.ParseInt(chi.URLParam(r, "placeID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid place ID"))
		return
	}

	var payload UpdateTripPlacePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if payload.Notes == nil && payload.Position == nil {
		app.badRequestResponse(w, r, errors.New("no fields to update"))
		return
	}

	if err := app.store.Trips.UpdatePlace(r.Context(), trip.ID, placeRowID, payload.Notes, payload.Position); err != nil {
		switch {
		case errors.Is(err, trips.ErrPlaceNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// removeTripPlaceHandler godoc
//
//	@Summary		Remove a stop from a trip
//	@Tags			trips
//	@Param			tripID	path		int	true	"Trip ID"
//	@Param			placeID	path		int	true	"Itinerary row ID"
//	@Success		204		{string}	string	"No Content"
//	@Failure		403		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trips/{tripID}/places/{placeID} [delete]
func (app *application) removeTripPlaceHandler(w http.ResponseWriter, r *http.Request) {
	trip := app.tripForOwner(w, r, false)
	if trip == nil {
		return
	}

	placeRowID, err := strconv.ParseInt(chi.URLParam(r, "placeID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid place ID"))
		return
	}

	if err := app.store.Trips.RemovePlace(r.Context(), trip.ID, placeRowID); err != nil {
		switch {
		case errors.Is(err, trips.ErrPlaceNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
