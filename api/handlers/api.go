package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sendgrid/sendgrid-go"
	"go.uber.org/zap"

	"github.com/linesmerrill/radio-santana-api/api"
	"github.com/linesmerrill/radio-santana-api/api/scheduler"
	"github.com/linesmerrill/radio-santana-api/chat"
	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/databases"
	"github.com/linesmerrill/radio-santana-api/identity"
	"github.com/linesmerrill/radio-santana-api/models"
	"github.com/linesmerrill/radio-santana-api/requests"
	"github.com/linesmerrill/radio-santana-api/session"
	"github.com/linesmerrill/radio-santana-api/stream"
	"github.com/linesmerrill/radio-santana-api/telemetry"
)

// healthProbeTimeout bounds the store ping of the health endpoint
const healthProbeTimeout = 5 * time.Second

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Registry  *prometheus.Registry
	Sessions  *session.Registry
	Scheduler *scheduler.Scheduler

	client   databases.ClientHelper
	dbHelper databases.DatabaseHelper
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	if a.ctx == nil {
		a.ctx, a.cancel = context.WithCancel(context.Background())
	}
	a.Registry = api.NewRegistry()

	var sink telemetry.Sink = telemetry.Noop{}
	if ps, err := telemetry.NewPrometheusSink(a.Registry); err != nil {
		zap.S().Warnw("telemetry disabled", "error", err)
	} else {
		sink = ps
	}

	ids := identity.NewService(databases.NewAdminDatabase(a.dbHelper), identity.Options{
		Secret:           []byte(a.Config.JWTSecret),
		AnonymousEnabled: a.Config.AnonymousAuthEnabled,
		AnonymousRate:    a.Config.AnonymousSignInRate,
	})
	chatManager := chat.NewManager(databases.NewChatMessageDatabase(a.dbHelper), sink, a.Config.ChatWindow, a.Config.ResubscribeBackoff)
	queue := requests.NewQueue(databases.NewMusicRequestDatabase(a.dbHelper), sink, a.Config.RequestRetention, a.Config.ResubscribeBackoff)
	admins := session.NewAdminGate(ids, a.Config.IsAdminEmail)
	a.Sessions = session.NewRegistry(ids, chatManager, sink)

	// setup go-guardian for middleware
	m := &api.Guardian{Verifier: ids, Admins: admins}
	m.SetupGoGuardian(a.ctx)
	metrics := api.NewMetrics(a.Registry)

	var stats StatsSource
	var refresher scheduler.StatsRefresher
	if a.Config.StatusURL != "" {
		sc := stream.NewClient(a.Config.StatusURL, a.Config.StreamURL, nil)
		stats, refresher = sc, sc
	}
	a.Scheduler = scheduler.NewScheduler(queue, refresher, databases.NewSchedulerLockDatabase(a.dbHelper))
	a.Scheduler.Sessions = a.Sessions

	var uploads ImageUploader
	if a.Config.CloudinaryURL != "" {
		cu, err := NewCloudinaryUploader(a.Config.CloudinaryURL)
		if err != nil {
			zap.S().Errorw("failed to configure cloudinary, uploads disabled", "error", err)
		} else {
			uploads = cu
		}
	}
	var mailer Mailer
	if a.Config.SendgridAPIKey != "" {
		mailer = sendgrid.NewSendClient(a.Config.SendgridAPIKey)
	}

	sess := Session{Registry: a.Sessions, Tokens: m}
	c := Chat{Manager: chatManager, Sessions: a.Sessions}
	q := Requests{Queue: queue}
	live := Live{Sessions: a.Sessions, Queue: queue}
	sh := Show{DB: databases.NewShowDatabase(a.dbHelper), Location: a.Config.Location}
	n := News{DB: databases.NewNewsDatabase(a.dbHelper)}
	contact := Contact{Mailer: mailer, StationEmail: a.Config.ContactEmail, Sink: sink}
	events := Events{Sink: sink}
	st := Stream{Stats: stats}
	up := Upload{Uploader: uploads}

	timeout := api.TimeoutMiddleware(api.RequestTimeout)
	rest := func(h http.HandlerFunc) http.Handler { return timeout(h) }
	listener := func(h http.HandlerFunc) http.Handler { return m.Middleware(timeout(h)) }
	admin := func(h http.Handler) http.Handler { return m.Middleware(m.AdminOnly(h)) }

	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	// healthchex
	r.HandleFunc("/health", a.healthCheckHandler).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/session", rest(sess.LoginHandler)).Methods("POST")
	apiCreate.Handle("/session", listener(sess.SessionHandler)).Methods("GET")
	apiCreate.Handle("/session", listener(sess.LogoutHandler)).Methods("DELETE")
	apiCreate.Handle("/session/reconnect", listener(sess.ReconnectHandler)).Methods("POST")

	apiCreate.Handle("/chat/messages", rest(c.MessagesHandler)).Methods("GET")
	apiCreate.Handle("/chat/messages", listener(c.SendMessageHandler)).Methods("POST")
	apiCreate.Handle("/chat/ws", m.Middleware(http.HandlerFunc(live.ChatSocketHandler))).Methods("GET")

	apiCreate.Handle("/requests", rest(q.RequestsHandler)).Methods("GET")
	apiCreate.Handle("/requests", rest(q.CreateRequestHandler)).Methods("POST")
	apiCreate.Handle("/requests/ws", http.HandlerFunc(live.RequestsSocketHandler)).Methods("GET")

	apiCreate.Handle("/shows", rest(sh.ShowsHandler)).Methods("GET")
	apiCreate.Handle("/shows/current", rest(sh.CurrentShowHandler)).Methods("GET")
	apiCreate.Handle("/news", rest(n.NewsHandler)).Methods("GET")
	apiCreate.Handle("/news/{news_id}", rest(n.NewsItemHandler)).Methods("GET")

	apiCreate.Handle("/contact", rest(contact.ContactHandler)).Methods("POST")
	apiCreate.Handle("/events", rest(events.RecordEventHandler)).Methods("POST")
	apiCreate.Handle("/stream/stats", rest(st.StatsHandler)).Methods("GET")

	adminRoutes := apiCreate.PathPrefix("/admin").Subrouter()
	adminRoutes.Handle("/auth/token", rest(m.CreateToken)).Methods("POST")
	adminRoutes.Handle("/auth/logout", admin(rest(m.RevokeToken))).Methods("DELETE")
	adminRoutes.Handle("/requests/{request_id}", admin(rest(q.UpdateRequestStatusHandler))).Methods("PATCH")
	adminRoutes.Handle("/chat/dj", admin(rest(c.DJMessageHandler))).Methods("POST")
	adminRoutes.Handle("/shows", admin(rest(sh.CreateShowHandler))).Methods("POST")
	adminRoutes.Handle("/shows/{show_id}", admin(rest(sh.UpdateShowHandler))).Methods("PUT")
	adminRoutes.Handle("/shows/{show_id}", admin(rest(sh.DeleteShowHandler))).Methods("DELETE")
	adminRoutes.Handle("/news", admin(rest(n.CreateNewsHandler))).Methods("POST")
	adminRoutes.Handle("/news/{news_id}", admin(rest(n.UpdateNewsHandler))).Methods("PUT")
	adminRoutes.Handle("/news/{news_id}", admin(rest(n.DeleteNewsHandler))).Methods("DELETE")
	adminRoutes.Handle("/uploads", admin(http.HandlerFunc(up.UploadImageHandler))).Methods("POST")

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With("error", err).Error("failed to create new client")
		return err
	}
	a.client = client

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With("error", err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("radio-santana-api has connected to the database")

	// initialize api router
	a.initializeRoutes()
	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// Shutdown closes every chat session, stops the jobs and disconnects from the
// database
func (a *App) Shutdown(ctx context.Context) {
	if a.Sessions != nil {
		a.Sessions.CloseAll()
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Errorw("failed to disconnect from database", "error", err)
		}
	}
}

func (a *App) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthCheckResponse{Alive: true}
	if a.client != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()
		if err := a.client.Ping(ctx); err != nil {
			zap.S().Warnw("database ping failed", "error", err)
		} else {
			resp.Database = true
		}
	}
	api.WriteJSON(w, http.StatusOK, resp)
}
