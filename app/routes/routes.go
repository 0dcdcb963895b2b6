// Package routes wires repositories, services and controllers into the
// HTTP router.
package routes

import (
	"net/http"
	"strings"

	"quill/app/apperr"
	"quill/app/cache"
	"quill/app/config"
	"quill/app/controllers"
	"quill/app/metrics"
	"quill/app/middleware"
	"quill/app/models"
	"quill/app/repositories"
	"quill/app/response"
	"quill/app/security"
	"quill/app/services"
	"quill/app/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the long-lived resources the router is built from.
type Deps struct {
	Config   *config.Config
	DB       *badger.DB
	Log      *zap.Logger
	Cache    *cache.Cache
	Store    storage.Store
	Registry *prometheus.Registry
}

// Setup builds the application router.
func Setup(d Deps) *mux.Router {
	cfg := d.Config
	m := metrics.New(d.Registry)
	rs := response.NewResponder(d.Log, cfg.Development())
	tokens := security.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	auth := middleware.NewAuth(tokens, rs)
	rc := middleware.NewResponseCache(d.Cache, cfg.CacheTTL, m)
	inv := m.Invalidator(d.Cache)

	repos := repositories.New(d.DB)
	activity := services.NewActivityRecorder(repos.Activities, d.Log)
	postService := services.NewPostService(repos.Posts, repos.Comments, repos.Likes, repos.Tags, repos.Categories, activity, inv)
	reportService := services.NewReportService(repos.Reports, repos.Posts, inv)

	authC := controllers.NewAuthController(services.NewAuthService(repos.Users, tokens, cfg.BcryptCost), rs)
	userC := controllers.NewUserController(services.NewUserService(repos.Users, repos.Follows, activity, inv), rs)
	postC := controllers.NewPostController(postService, reportService, rs)
	commentC := controllers.NewCommentController(services.NewCommentService(repos.Comments, repos.Posts, repos.Likes, activity, inv), rs)
	tagC := controllers.NewTagController(services.NewTagService(repos.Tags, inv), rs)
	categoryC := controllers.NewCategoryController(services.NewCategoryService(repos.Categories, inv), rs)
	reportC := controllers.NewReportController(reportService, rs)
	uploadC := controllers.NewUploadController(services.NewUploadService(repos.Images, d.Store, cfg.UploadMaxBytes, d.Log), rs)
	feedC := controllers.NewFeedController(services.NewFeedService(repos.Follows, repos.Activities), rs)
	healthC := controllers.NewHealthController(d.DB, rs)

	router := mux.NewRouter()
	router.Use(middleware.Track)
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.Recoverer(d.Log, rs))
	router.Use(middleware.Metrics(m))
	router.Use(auth.Authenticate)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.Error(w, r, apperr.NotFound("Route not found"))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.JSON(w, http.StatusMethodNotAllowed, response.Body{"error": "MethodNotAllowedError", "message": "Method not allowed"})
	})

	token := func(h http.HandlerFunc) http.Handler { return auth.RequireToken(h) }
	admin := func(h http.HandlerFunc) http.Handler { return auth.RequireRole(models.RoleAdmin)(h) }
	cached := func(class string, h http.Handler) http.Handler { return rc.Handler(class)(h) }

	router.HandleFunc("/healthz", healthC.Check).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})).Methods("GET")

	if _, ok := d.Store.(*storage.DiskStore); ok && strings.HasPrefix(cfg.UploadBaseURL, "/") {
		prefix := strings.TrimSuffix(cfg.UploadBaseURL, "/") + "/"
		router.PathPrefix(prefix).Handler(http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.UploadDir)))).Methods("GET")
	}

	// Auth
	router.HandleFunc("/auth/register", authC.Register).Methods("POST")
	router.HandleFunc("/auth/login", authC.Login).Methods("POST")
	router.Handle("/auth/me", token(authC.Me)).Methods("GET")

	// Users
	router.Handle("/users/{userId}", cached(cache.ClassUsers, http.HandlerFunc(userC.Show))).Methods("GET")
	router.Handle("/users/{userId}/role", admin(userC.SetRole)).Methods("PATCH")
	router.Handle("/users/{userId}/follow", token(userC.Follow)).Methods("POST")
	router.Handle("/users/{userId}/follow", token(userC.Unfollow)).Methods("DELETE")
	router.Handle("/users/{userId}/followers", cached(cache.ClassUsers, http.HandlerFunc(userC.Followers))).Methods("GET")
	router.Handle("/users/{userId}/following", cached(cache.ClassUsers, http.HandlerFunc(userC.Following))).Methods("GET")

	// Posts
	posts := router.PathPrefix("/posts").Subrouter()
	posts.Handle("", cached(cache.ClassPosts, http.HandlerFunc(postC.Index))).Methods("GET")
	posts.Handle("", token(postC.Create)).Methods("POST")
	posts.Handle("/popular", cached(cache.ClassPosts, http.HandlerFunc(postC.Popular))).Methods("GET")
	posts.Handle("/{postId}", cached(cache.ClassPosts, http.HandlerFunc(postC.Show))).Methods("GET")
	posts.Handle("/{postId}", token(postC.Update)).Methods("PUT")
	posts.Handle("/{postId}", token(postC.Delete)).Methods("DELETE")
	posts.Handle("/{postId}/like", token(postC.Like)).Methods("POST")
	posts.Handle("/{postId}/like", token(postC.Unlike)).Methods("DELETE")
	posts.Handle("/{postId}/report", token(postC.Report)).Methods("POST")

	// Comments
	posts.Handle("/{postId}/comments", cached(cache.ClassComments, http.HandlerFunc(commentC.Index))).Methods("GET")
	posts.Handle("/{postId}/comments", token(commentC.Create)).Methods("POST")
	posts.Handle("/{postId}/comments/{commentId}/reply", token(commentC.Reply)).Methods("POST")
	posts.Handle("/{postId}/comments/{commentId}", token(commentC.Update)).Methods("PUT")
	posts.Handle("/{postId}/comments/{commentId}", token(commentC.Delete)).Methods("DELETE")
	posts.Handle("/{postId}/comments/{commentId}/pin", token(commentC.Pin)).Methods("POST")
	posts.Handle("/{postId}/comments/{commentId}/pin", token(commentC.Unpin)).Methods("DELETE")
	posts.Handle("/{postId}/comments/{commentId}/like", token(commentC.Like)).Methods("POST")
	posts.Handle("/{postId}/comments/{commentId}/like", token(commentC.Unlike)).Methods("DELETE")

	// Taxonomy
	router.Handle("/tags", cached(cache.ClassTags, http.HandlerFunc(tagC.Index))).Methods("GET")
	router.Handle("/tags", admin(tagC.Create)).Methods("POST")
	router.Handle("/tags/{tagId}", cached(cache.ClassTags, http.HandlerFunc(tagC.Show))).Methods("GET")
	router.Handle("/tags/{tagId}", admin(tagC.Update)).Methods("PUT")
	router.Handle("/tags/{tagId}", admin(tagC.Delete)).Methods("DELETE")
	router.Handle("/categories", cached(cache.ClassCategories, http.HandlerFunc(categoryC.Index))).Methods("GET")
	router.Handle("/categories", admin(categoryC.Create)).Methods("POST")
	router.Handle("/categories/{categoryId}", cached(cache.ClassCategories, http.HandlerFunc(categoryC.Show))).Methods("GET")
	router.Handle("/categories/{categoryId}", admin(categoryC.Update)).Methods("PUT")
	router.Handle("/categories/{categoryId}", admin(categoryC.Delete)).Methods("DELETE")

	// Moderation. The role check runs before the cache lookup.
	router.Handle("/reports", auth.RequireRole(models.RoleAdmin)(cached(cache.ClassReports, http.HandlerFunc(reportC.Index)))).Methods("GET")
	router.Handle("/reports/{reportId}", admin(reportC.Update)).Methods("PATCH")

	// Uploads and feed
	router.Handle("/uploads/images", token(uploadC.Create)).Methods("POST")
	router.Handle("/uploads/images/{imageId}", token(uploadC.Delete)).Methods("DELETE")
	router.Handle("/feed", token(feedC.Index)).Methods("GET")

	return router
}
