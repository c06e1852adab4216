package router

import (
	"database/sql"
	"net/http"

	"notewise/config"
	authHandler "notewise/internal/auth"
	authRepository "notewise/internal/auth/repository"
	authService "notewise/internal/auth/service"
	"notewise/internal/cache"
	"notewise/internal/dashboard"
	"notewise/internal/enhance"
	"notewise/internal/llm"
	noteHandler "notewise/internal/note"
	noteRepository "notewise/internal/note/repository"
	noteService "notewise/internal/note/service"
	summaryHandler "notewise/internal/summary"
	summaryRepository "notewise/internal/summary/repository"
	summaryService "notewise/internal/summary/service"
	"notewise/middleware"
	"notewise/socket"
)

// Deps is everything the HTTP surface needs from serve.
type Deps struct {
	Config   *config.Config
	DB       *sql.DB
	Hub      *socket.Hub
	Cache    cache.Cache
	Enhancer llm.Generator
	Summary  llm.Generator
}

func Setup(d Deps) http.Handler {
	mux := http.NewServeMux()

	userRepo := authRepository.NewUserRepository(d.DB)
	authSvc := authService.NewAuthService(userRepo, authService.NewTokens(d.Config.JWTSecret, d.Config.TokenTTL()), d.Cache, d.Hub)
	authSvc.OAuthAuthorizeURL = d.Config.OAuthAuthorizeURL
	authSvc.SiteURL = d.Config.SiteURL
	auth := middleware.Auth(authSvc, d.Config.SignInPath)

	// WebSocket
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.UserID(r.Context())
		socket.ServeWs(d.Hub, w, r, userID)
	})
	mux.Handle("/ws", auth(wsHandler))

	// Identity
	authH := authHandler.NewAuthHandler(authSvc)
	mux.HandleFunc("/api/auth/sign-up", authH.SignUp)
	mux.HandleFunc("/api/auth/sign-in", authH.SignIn)
	mux.HandleFunc("/api/auth/oauth", authH.OAuth)
	mux.Handle("/api/auth/sign-out", auth(http.HandlerFunc(authH.SignOut)))
	mux.Handle("/api/auth/user", auth(http.HandlerFunc(authH.CurrentUser)))
	mux.Handle("/api/users/me", auth(http.HandlerFunc(authH.Profile)))

	// Enhancement gateway
	enhanceH := enhance.NewHandler(d.Enhancer)
	mux.Handle("/api/enhance-note", auth(http.HandlerFunc(enhanceH.EnhanceNote)))

	// Notes
	noteSvc := noteService.NewNoteService(noteRepository.NewNoteRepository(d.DB), d.Cache, d.Hub)
	noteH := noteHandler.NewNoteHandler(noteSvc)
	mux.Handle("/api/notes", auth(http.HandlerFunc(noteH.GetNotes)))
	mux.Handle("/api/notes/recent", auth(http.HandlerFunc(noteH.GetRecentNotes)))
	mux.Handle("/api/notes/get", auth(http.HandlerFunc(noteH.GetNote)))
	mux.Handle("/api/notes/create", auth(http.HandlerFunc(noteH.CreateNote)))
	mux.Handle("/api/notes/update", auth(http.HandlerFunc(noteH.UpdateNote)))
	mux.Handle("/api/notes/delete", auth(http.HandlerFunc(noteH.DeleteNote)))

	// Summaries
	summaryRepo := summaryRepository.NewSummaryRepository(d.DB)
	summarySvc := summaryService.NewSummaryService(summaryRepo, noteSvc, d.Summary, d.Cache, d.Hub)
	summaryH := summaryHandler.NewSummaryHandler(summarySvc)
	mux.Handle("/api/summaries", auth(http.HandlerFunc(summaryH.GetSummary)))
	mux.Handle("/api/summaries/generate", auth(http.HandlerFunc(summaryH.GenerateSummary)))
	mux.Handle("/api/summaries/history", auth(http.HandlerFunc(summaryH.GetHistory)))
	mux.Handle("/api/summaries/recent", auth(http.HandlerFunc(summaryH.GetRecentSummaries)))

	// Dashboard
	dash := dashboard.NewHandler(noteSvc, summarySvc, userRepo, d.Cache)
	mux.Handle("/api/dashboard/stats", auth(http.HandlerFunc(dash.GetStats)))

	return middleware.RequestLogger(middleware.CORSMiddleware(d.Config.Origins())(mux))
}
