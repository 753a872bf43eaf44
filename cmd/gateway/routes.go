package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/learnportal/internal/api/http"
	auth "github.com/mind-engage/learnportal/internal/auth/middleware"
	"github.com/mind-engage/learnportal/internal/config"
	"github.com/mind-engage/learnportal/internal/content"
	"github.com/mind-engage/learnportal/internal/quiz"
	rbac "github.com/mind-engage/learnportal/internal/rbac"
	"github.com/mind-engage/learnportal/internal/shop"
	storage "github.com/mind-engage/learnportal/internal/storage"
	syncx "github.com/mind-engage/learnportal/internal/sync"
)

type app struct {
	cfg      config.Config
	store    *content.Repo
	events   syncx.Log
	blobs    storage.BlobStore
	tests    *content.TestService
	attempts *quiz.Registry
	shop     *shop.Shop
	authSvc  *auth.AuthService
	authn    *auth.Authenticator
	checker  *rbac.Checker
}

func newApp(cfg config.Config, store *content.Repo, events syncx.Log, bs storage.BlobStore) *app {
	tests := content.NewTestService(store, store.NewID)
	tests.Strict = cfg.StrictGift
	return &app{
		cfg:      cfg,
		store:    store,
		events:   events,
		blobs:    bs,
		tests:    tests,
		attempts: quiz.NewRegistry(store.NewID, api.RecordResult(store, events)),
		shop:     shop.New(store, events, store.NewID),
		authSvc:  auth.NewAuthService(cfg.AuthSecret),
		authn: auth.NewAuthenticator(store,
			auth.Account{Username: cfg.AdminUser, PassHash: cfg.AdminPassHash, Role: content.RoleAdmin},
			auth.Account{Username: cfg.StudentUser, PassHash: cfg.StudentPassHash, Role: content.RoleStudent},
		),
		checker: rbac.NewChecker(nil),
	}
}

func (a *app) routes() http.Handler {
	maxUpload := int64(a.cfg.MaxUploadMB) << 20

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(a.authSvc, a.authn))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := a.store.ListCourses(r.Context()); err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(a.authSvc))
		pr.Use(auth.AttachRoleFromStore(a.store, a.cfg.AdminUser, a.cfg.StudentUser))

		pr.With(rbac.Require("asset:view")).Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, a.blobs)
		})

		// Courses
		pr.With(rbac.Require("course:view")).Get("/courses", api.ListCoursesHandler(a.store))
		pr.With(rbac.Require("course:view")).Get("/courses/{courseID}", api.GetCourseHandler(a.store))
		pr.With(rbac.Require("course:create")).Post("/courses", api.CreateCourseHandler(a.store))
		pr.With(rbac.Require("course:update")).Put("/courses/{courseID}", api.UpdateCourseHandler(a.store))
		pr.With(rbac.Require("course:delete")).Delete("/courses/{courseID}", api.DeleteCourseHandler(a.store))

		// Videos and materials
		pr.With(rbac.Require("course:view")).Get("/courses/{courseID}/videos", api.ListVideosHandler(a.store))
		pr.With(rbac.Require("video:create")).Post("/courses/{courseID}/videos", api.CreateVideoHandler(a.store))
		pr.With(rbac.Require("video:update")).Put("/videos/{videoID}", api.UpdateVideoHandler(a.store))
		pr.With(rbac.Require("video:delete")).Delete("/videos/{videoID}", api.DeleteVideoHandler(a.store))

		pr.With(rbac.Require("course:view")).Get("/courses/{courseID}/materials", api.ListMaterialsHandler(a.store))
		pr.With(rbac.Require("material:create")).Post("/courses/{courseID}/materials", api.CreateMaterialHandler(a.store))
		pr.With(rbac.Require("material:upload")).
			Post("/courses/{courseID}/materials/upload", api.UploadMaterialHandler(a.store, a.blobs, maxUpload))
		pr.With(rbac.Require("material:delete")).Delete("/materials/{materialID}", api.DeleteMaterialHandler(a.store, a.blobs))

		// Tests
		pr.With(rbac.Require("test:view")).Get("/courses/{courseID}/tests", api.ListTestsHandler(a.store))
		pr.With(rbac.Require("test:create")).
			Post("/courses/{courseID}/tests", api.UploadTestHandler(a.tests, a.blobs, a.events, maxUpload))
		pr.With(rbac.Require("test:create")).Post("/tests/preview", api.PreviewTestHandler(maxUpload))
		pr.With(rbac.Require("test:view")).Get("/tests/{testID}", api.GetTestHandler(a.store, a.checker))
		pr.With(rbac.Require("test:export")).Get("/tests/{testID}/export", api.ExportTestHandler(a.tests))
		pr.With(rbac.Require("test:delete")).Delete("/tests/{testID}", api.DeleteTestHandler(a.store, a.blobs))

		// Attempts; ownership is checked inside the handlers
		pr.With(rbac.Require("test:take")).Post("/tests/{testID}/attempts", api.StartAttemptHandler(a.store, a.attempts))
		pr.Route("/attempts/{attemptID}", func(ar chi.Router) {
			ar.Use(rbac.Require("test:take"))
			ar.Get("/", api.GetAttemptHandler(a.attempts, a.checker))
			ar.Post("/answer", api.AnswerHandler(a.attempts, a.checker))
			ar.Post("/previous", api.PreviousHandler(a.attempts, a.checker))
			ar.Post("/next", api.NextHandler(a.attempts, a.checker))
			ar.Post("/submit", api.SubmitHandler(a.attempts, a.checker))
			ar.Delete("/", api.AbandonAttemptHandler(a.attempts, a.checker))
		})
		pr.With(rbac.RequireAny("result:view-own", "attempt:view-all")).Get("/results", api.ListResultsHandler(a.store, a.checker))

		// Bookshop
		pr.With(rbac.Require("book:view")).Get("/books", api.ListBooksHandler(a.store))
		pr.With(rbac.Require("book:view")).Get("/books/{bookID}", api.GetBookHandler(a.store))
		pr.With(rbac.Require("book:create")).Post("/books", api.CreateBookHandler(a.store))
		pr.With(rbac.Require("book:update")).Put("/books/{bookID}", api.UpdateBookHandler(a.store))
		pr.With(rbac.Require("book:delete")).Delete("/books/{bookID}", api.DeleteBookHandler(a.store))

		pr.Route("/cart", func(cr chi.Router) {
			cr.Use(rbac.Require("cart:use"))
			cr.Get("/", api.GetCartHandler(a.shop))
			cr.Delete("/", api.ClearCartHandler(a.shop))
			cr.Post("/items", api.AddToCartHandler(a.shop))
			cr.Put("/items/{bookID}", api.SetCartQuantityHandler(a.shop))
			cr.Delete("/items/{bookID}", api.RemoveFromCartHandler(a.shop))
			cr.Post("/checkout", api.CheckoutHandler(a.shop))
		})

		pr.Put("/me/password", api.ChangePasswordHandler(a.store))

		mountAdminRoutes(pr, a)
	})

	return r
}
