package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"voxa/internal/domain/reviews"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxImageBytes = 5 * 1024 * 1024

// uploadToCloudinary pushes a file into the given folder under a custom
// public ID and returns the served URL.
func (app *application) uploadToCloudinary(file io.Reader, folder, publicID string) (string, error) {
	resp, err := app.cld.Upload.Upload(
		context.Background(),
		file,
		uploader.UploadParams{
			Folder:    folder,
			PublicID:  publicID,
			Overwrite: api.Bool(false),
		},
	)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}

func (app *application) deletePhotoFromCloudinary(photoURL string) error {
	publicID, err := extractPublicIDFromURL(photoURL)
	if err != nil {
		return fmt.Errorf("failed to extract public ID: %w", err)
	}

	_, err = app.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo from cloudinary: %w", err)
	}

	return nil
}

func extractPublicIDFromURL(photoURL string) (string, error) {
	parsedURL, err := url.Parse(photoURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	pathParts := strings.Split(parsedURL.Path, "/")
	for i, part := range pathParts {
		if part == "upload" && i+1 < len(pathParts) {
			publicID := strings.Join(pathParts[i+1:], "/")
			// Strip the version segment (v123...) and the extension.
			if idx := strings.Index(publicID, "/"); idx > 0 && strings.HasPrefix(publicID, "v") {
				if _, err := strconv.Atoi(publicID[1:idx]); err == nil {
					publicID = publicID[idx+1:]
				}
			}
			if idx := strings.LastIndex(publicID, "."); idx > 0 {
				publicID = publicID[:idx]
			}
			return publicID, nil
		}
	}

	return "", errors.New("failed to extract public ID from URL")
}

// imageFromForm pulls the named multipart file and rejects anything that
// is not a jpeg or png.
func imageFromForm(w http.ResponseWriter, r *http.Request, field string) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %q file: %w", field, err)
	}

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png":
	default:
		file.Close()
		return nil, fmt.Errorf("unsupported image type %q", contentType)
	}

	return file, nil
}

// uploadAvatarHandler godoc
//
//	@Summary		Upload the viewer's avatar
//	@Description	Accepts a multipart form with an "avatar" image (jpeg or png)
//	@Description	and replaces the profile picture.
//	@Tags			users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			avatar	formData	file	true	"Avatar image"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/me/avatar [post]
func (app *application) uploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	file, err := imageFromForm(w, r, "avatar")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("user_%d_%s", user.ID, uuid.New().String())
	avatarURL, err := app.uploadToCloudinary(file, "avatars", publicID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// Old avatars are left behind in cloudinary; a cleanup job can
	// reconcile them against profile_picture_url later.
	if err := app.store.Users.SetAvatar(r.Context(), avatarURL, user.ID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"avatar_url": avatarURL}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// reviewForAuthor loads the review and enforces that the viewer wrote it.
func (app *application) reviewForAuthor(w http.ResponseWriter, r *http.Request) *reviews.Review {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid review ID"))
		return nil
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return nil
	}

	if review.AuthorID != user.ID {
		app.forbiddenResponse(w, r)
		return nil
	}

	return review
}

// uploadReviewPhotoHandler godoc
//
//	@Summary		Attach a photo to a review
//	@Description	Accepts a multipart form with a "photo" image (jpeg or png).
//	@Tags			reviews
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			reviewID	path		int		true	"Review ID"
//	@Param			photo		formData	file	true	"Photo"
//	@Success		201			{object}	map[string]string
//	@Failure		400			{object}	error
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/photos [post]
func (app *application) uploadReviewPhotoHandler(w http.ResponseWriter, r *http.Request) {
	review := app.reviewForAuthor(w, r)
	if review == nil {
		return
	}

	file, err := imageFromForm(w, r, "photo")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("review_%d_%s", review.ID, uuid.New().String())
	photoURL, err := app.uploadToCloudinary(file, "reviews", publicID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Reviews.AddImageURL(r.Context(), review.ID, photoURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, map[string]string{"photo_url": photoURL}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteReviewPhotoHandler godoc
//
//	@Summary		Remove a photo from a review
//	@Tags			reviews
//	@Param			reviewID	path		int		true	"Review ID"
//	@Param			photo_url	query		string	true	"URL of the photo to remove"
//	@Success		204			{string}	string	"No Content"
//	@Failure		400			{object}	error
//	@Failure		403			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/reviews/{reviewID}/photos [delete]
func (app *application) deleteReviewPhotoHandler(w http.ResponseWriter, r *http.Request) {
	review := app.reviewForAuthor(w, r)
	if review == nil {
		return
	}

	photoURL := r.URL.Query().Get("photo_url")
	if photoURL == "" {
		app.badRequestResponse(w, r, errors.New("photo_url is required"))
		return
	}

	found := false
	for _, u := range review.ImageURLs {
		if u == photoURL {
			found = true
			break
		}
	}
	if !found {
		app.notFoundResponse(w, r, errors.New("photo not attached to this review"))
		return
	}

	if err := app.store.Reviews.RemoveImageURL(r.Context(), review.ID, photoURL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.deletePhotoFromCloudinary(photoURL); err != nil {
		// The DB row no longer references the asset; log and move on.
		app.logger.Errorw("failed to delete cloudinary asset", "url", photoURL, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
