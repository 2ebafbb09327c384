package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"voxa/internal/maps"

	"github.com/go-chi/chi/v5"
)

// searchPlacesHandler godoc
//
//	@Summary		Search places
//	@Description	Proxies a text search to the places provider. Optional lat/lng
//	@Description	bias the results; radius is meters.
//	@Tags			places
//	@Produce		json
//	@Param			query	query		string	true	"Search text"
//	@Param			lat		query		number	false	"Bias latitude"
//	@Param			lng		query		number	false	"Bias longitude"
//	@Param			radius	query		int		false	"Bias radius in meters"
//	@Success		200		{array}		maps.Place
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/places/search [get]
func (app *application) searchPlacesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		app.badRequestResponse(w, r, errors.New("query is required"))
		return
	}

	req := &maps.SearchRequest{Query: query}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if (latStr == "") != (lngStr == "") {
		app.badRequestResponse(w, r, errors.New("lat and lng must be supplied together"))
		return
	}
	if latStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid lat"))
			return
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("invalid lng"))
			return
		}
		req.Lat, req.Lng = &lat, &lng
	}

	if radiusStr := q.Get("radius"); radiusStr != "" {
		radius, err := strconv.Atoi(radiusStr)
		if err != nil || radius <= 0 {
			app.badRequestResponse(w, r, fmt.Errorf("invalid radius"))
			return
		}
		req.Radius = radius
	}

	results, err := app.places.SearchPlaces(r.Context(), req)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, results); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getPlaceDetailsHandler godoc
//
//	@Summary		Get place details
//	@Tags			places
//	@Produce		json
//	@Param			placeID	path		string	true	"Provider place ID"
//	@Success		200		{object}	maps.PlaceDetails
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/places/{placeID} [get]
func (app *application) getPlaceDetailsHandler(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")
	if placeID == "" {
		app.badRequestResponse(w, r, errors.New("place ID is required"))
		return
	}

	details, err := app.places.GetPlaceDetails(r.Context(), placeID)
	if err != nil {
		switch {
		case errors.Is(err, maps.ErrPlaceNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, details); err != nil {
		app.internalServerError(w, r, err)
	}
}

// reverseGeocodeHandler godoc
//
//	@Summary		Reverse geocode coordinates
//	@Tags			places
//	@Produce		json
//	@Param			lat	query		number	true	"Latitude"
//	@Param			lng	query		number	true	"Longitude"
//	@Success		200	{array}		maps.GeocodeResult
//	@Failure		400	{object}	error
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/places/reverse-geocode [get]
func (app *application) reverseGeocodeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid lat"))
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid lng"))
		return
	}

	results, err := app.places.ReverseGeocode(r.Context(), lat, lng)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, results); err != nil {
		app.internalServerError(w, r, err)
	}
}
