// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/cyscom-vit/clubportal/internal/app/features/authgoogle"
	contributionsfeature "github.com/cyscom-vit/clubportal/internal/app/features/contributions"
	dashboardfeature "github.com/cyscom-vit/clubportal/internal/app/features/dashboard"
	departmentsfeature "github.com/cyscom-vit/clubportal/internal/app/features/departments"
	healthfeature "github.com/cyscom-vit/clubportal/internal/app/features/health"
	joinrequestsfeature "github.com/cyscom-vit/clubportal/internal/app/features/joinrequests"
	leaderboardfeature "github.com/cyscom-vit/clubportal/internal/app/features/leaderboard"
	loginfeature "github.com/cyscom-vit/clubportal/internal/app/features/login"
	logoutfeature "github.com/cyscom-vit/clubportal/internal/app/features/logout"
	membersfeature "github.com/cyscom-vit/clubportal/internal/app/features/members"
	projectsfeature "github.com/cyscom-vit/clubportal/internal/app/features/projects"
	userinfofeature "github.com/cyscom-vit/clubportal/internal/app/features/userinfo"
	contributionstore "github.com/cyscom-vit/clubportal/internal/app/store/contributions"
	"github.com/cyscom-vit/clubportal/internal/app/store/enrollment"
	joinrequeststore "github.com/cyscom-vit/clubportal/internal/app/store/joinrequests"
	userstore "github.com/cyscom-vit/clubportal/internal/app/store/users"
	"github.com/cyscom-vit/clubportal/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. The portal initializes the
// session store, applies session middleware, and mounts the feature
// routers: authentication, departments, projects, join requests,
// contributions, leaderboard, and the admin surface.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	// Shared stores: the enrollment engine backs both the department
	// selection endpoints and join-request approval.
	engine := enrollment.NewEngine(db, logger)
	users := userstore.New(db)
	requests := joinrequeststore.New(db, logger, engine)
	contribs := contributionstore.New(db, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	googleHandler := authgooglefeature.NewHandler(db, appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	loginHandler := loginfeature.NewHandler(users, logger)
	loginfeature.MountRoutes(r, loginHandler)

	logoutHandler := logoutfeature.NewHandler(logger)
	logoutfeature.MountRoutes(r, logoutHandler)

	// Current user identity
	userinfoHandler := userinfofeature.NewHandler(db, logger)
	userinfofeature.MountRoutes(r, userinfoHandler)

	// Departments and the selection workflow
	departmentsHandler := departmentsfeature.NewHandler(db, engine, logger)
	r.Mount("/departments", departmentsfeature.Routes(departmentsHandler))

	// Projects and the join workflow
	projectsHandler := projectsfeature.NewHandler(db, engine, requests, logger)
	r.Mount("/projects", projectsfeature.Routes(projectsHandler))

	// Member join-request history
	joinrequestsHandler := joinrequestsfeature.NewHandler(requests, logger)
	joinrequestsfeature.MountRoutes(r, joinrequestsHandler)

	// Contributions
	contributionsHandler := contributionsfeature.NewHandler(contribs, appCfg.StorageLocalPath, logger)
	r.Mount("/contributions", contributionsfeature.Routes(contributionsHandler))

	// Leaderboard (public)
	leaderboardHandler := leaderboardfeature.NewHandler(db, logger)
	leaderboardfeature.MountRoutes(r, leaderboardHandler)

	// Admin surface: review queues, member management, dashboard stats
	dashboardHandler := dashboardfeature.NewHandler(db, logger)
	membersHandler := membersfeature.NewHandler(db, logger)

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireRole("admin", "superadmin"))
		joinrequestsfeature.MountAdminRoutes(r, joinrequestsHandler)
		contributionsfeature.MountAdminRoutes(r, contributionsHandler)
		departmentsfeature.MountAdminRoutes(r, departmentsHandler)
		membersfeature.MountAdminRoutes(r, membersHandler)
		dashboardfeature.MountAdminRoutes(r, dashboardHandler)
	})

	return r, nil
}
