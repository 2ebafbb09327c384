package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voxa/docs" //this is required to generate swagger docs
	"voxa/internal/auth"
	"voxa/internal/config"
	"voxa/internal/domain/groups"
	"voxa/internal/domain/storage"
	"voxa/internal/mailer"
	"voxa/internal/maps"
	"voxa/internal/notifications"
	"voxa/internal/ratelimiter"
	"voxa/internal/ws"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config.Config
	store         *storage.Container
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	push          notifications.PushSender
	places        maps.Provider
	hub           *ws.Hub
	inviteCoder   *groups.InviteCoder
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Use(app.RateLimiterMiddleware)

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.Addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/token/web", app.createTokenCookieHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.Post("/refresh/web", app.refreshTokenCookieHandler)
			r.Get("/session", app.sessionHandler)
			r.Post("/reset-password", app.requestResetPasswordHandler)
			r.Patch("/reset-password", app.resetPasswordHandler)
		})

		// Route that does NOT require authentication
		r.Put("/users/activate/{token}", app.activateUserHandler)

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getCurrentUserHandler)
			r.Patch("/me", app.updateProfileHandler)
			r.Delete("/me", app.deleteUserAccountHandler)
			r.Post("/me/avatar", app.uploadAvatarHandler)
			r.Post("/logout", app.logoutHandler)
			r.Post("/logout/web", app.logoutCookieHandler)

			r.Post("/push-tokens", app.savePushTokenHandler)
			r.Delete("/push-tokens", app.removePushTokenHandler)

			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", app.getUserProfileHandler)
				r.Put("/follow", app.followUserHandler)
				r.Put("/unfollow", app.unfollowUserHandler)
				r.Get("/followers", app.listFollowersHandler)
				r.Get("/following", app.listFollowingHandler)
				r.Get("/reviews", app.listUserReviewsHandler)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			// Feeds readable without an account; a valid token still
			// personalizes is_liked.
			r.With(app.OptionalAuthMiddleware).Get("/community", app.communityFeedHandler)
			r.With(app.OptionalAuthMiddleware).Get("/place/{placeID}", app.placeReviewsHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Get("/following", app.followingFeedHandler)
				r.Post("/", app.createReviewHandler)

				r.Route("/{reviewID}", func(r chi.Router) {
					r.Get("/", app.getReviewHandler)
					r.Patch("/", app.updateReviewHandler)
					r.Delete("/", app.deleteReviewHandler)
					r.Post("/like", app.likeReviewHandler)
					r.Delete("/like", app.unlikeReviewHandler)
					r.Post("/photos", app.uploadReviewPhotoHandler)
					r.Delete("/photos", app.deleteReviewPhotoHandler) // DELETE /reviews/{reviewID}/photos?photo_url={url}
				})
			})
		})

		r.Route("/groups", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createGroupHandler)
			r.Get("/", app.listMyGroupsHandler)
			r.Post("/join", app.joinGroupHandler)

			r.Route("/{groupID}", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(app.RequireGroupMember)
					r.Get("/", app.getGroupHandler)
					r.Get("/members", app.listGroupMembersHandler)
					r.Get("/reviews", app.groupReviewsHandler)
					r.Get("/messages", app.listGroupMessagesHandler)
					r.Post("/messages", app.createGroupMessageHandler)
					r.Get("/ws", app.groupChatHandler)
					r.Post("/leave", app.leaveGroupHandler)
				})
				r.Group(func(r chi.Router) {
					r.Use(app.RequireGroupAdmin)
					r.Patch("/", app.updateGroupHandler)
					r.Delete("/", app.deleteGroupHandler)
					r.Delete("/members/{userID}", app.removeGroupMemberHandler)
				})
			})
		})

		r.Route("/trips", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createTripHandler)
			r.Get("/", app.listTripsHandler)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", app.getTripHandler)
				r.Patch("/", app.updateTripHandler)
				r.Delete("/", app.deleteTripHandler)
				r.Post("/places", app.addTripPlaceHandler)
				r.Get("/places", app.listTripPlacesHandler)
				r.Patch("/places/{placeID}", app.updateTripPlaceHandler)
				r.Delete("/places/{placeID}", app.removeTripPlaceHandler)
			})
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createRecommendationHandler)
			r.Get("/", app.listRecommendationsHandler)
			r.Patch("/{recommendationID}/read", app.markRecommendationReadHandler)
			r.Delete("/{recommendationID}", app.deleteRecommendationHandler)
		})

		r.Route("/places", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/search", app.searchPlacesHandler)
			r.Get("/reverse-geocode", app.reverseGeocodeHandler)
			r.Get("/{placeID}", app.getPlaceDetailsHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.ExternalURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.Addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.Addr, "env", app.config.Env)

	return nil
}
