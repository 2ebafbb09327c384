package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// setAuthCookies sets access + refresh tokens as HttpOnly cookies.
// Web browsers store/send these automatically; JS cannot read them.
func (app *application) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	secure := app.config.Env == "production"

	// Access token cookie (short lived)
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		Domain:   app.config.CookieDomain,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(app.config.Token.AccessExp.Seconds()),
	})

	// Refresh token cookie (long lived, refresh/logout only)
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/v1/authentication",
		Domain:   app.config.CookieDomain,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(app.config.Token.RefreshExp.Seconds()),
	})
}

func (app *application) clearAuthCookies(w http.ResponseWriter) {
	expire := func(name, path string) {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			Domain:   app.config.CookieDomain,
			HttpOnly: true,
			Secure:   app.config.Env == "production",
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}

	expire("access_token", "/")
	expire("refresh_token", "/v1/authentication")
}

// createTokenCookieHandler is the web variant of login: same checks,
// but the tokens travel as HttpOnly cookies and the body stays small.
func (app *application) createTokenCookieHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}
	if err := user.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	accessToken, refreshToken, err := app.authenticator.GenerateTokens(user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshToken(r.Context(), user.ID, refreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.setAuthCookies(w, accessToken, refreshToken)

	_ = app.jsonResponse(w, http.StatusOK, map[string]string{
		"user_id": strconv.FormatInt(user.ID, 10),
	})
}

func (app *application) refreshTokenCookieHandler(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie("refresh_token")
	if err != nil || c.Value == "" {
		app.unauthorizedErrorResponse(w, r, errors.New("missing refresh token"))
		return
	}

	userID, err := app.validateRefreshToken(r, c.Value)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	accessToken, newRefresh, err := app.authenticator.GenerateTokens(userID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshToken(r.Context(), userID, newRefresh); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.setAuthCookies(w, accessToken, newRefresh)

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) logoutCookieHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}

	if err := app.store.Users.DeleteRefreshToken(r.Context(), user.ID); err != nil {
		app.logger.Warnw("failed to delete refresh token on logout", "user_id", user.ID, "error", err)
	}

	// Always clear cookies
	app.clearAuthCookies(w)

	w.WriteHeader(http.StatusNoContent)
}

type SessionResponse struct {
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}

// sessionHandler godoc
//
//	@Summary		Get current web session (cookie)
//	@Description	Reads access_token cookie, validates it, returns session info.
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	map[string]SessionResponse
//	@Failure		401	{object}	error
//	@Router			/authentication/session [get]
func (app *application) sessionHandler(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie("access_token")
	if err != nil || c.Value == "" {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}

	tok, err := app.authenticator.ValidateAccessToken(c.Value)
	if err != nil || tok == nil || !tok.Valid {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}

	subFloat, ok := claims["sub"].(float64)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("not authorized"))
		return
	}

	var expUnix int64
	if exp, ok := claims["exp"].(float64); ok {
		expUnix = int64(exp)
	}

	_ = app.jsonResponse(w, http.StatusOK, SessionResponse{
		UserID:    strconv.FormatInt(int64(subFloat), 10),
		ExpiresAt: expUnix,
	})
}
