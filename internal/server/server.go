package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/booking"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/class"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/config"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/email"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/family"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/training"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/user"
)

// Handlers are the domain endpoints the router exposes.
type Handlers struct {
	User     *user.Handler
	Class    *class.Handler
	Booking  *booking.Handler
	Training *training.Handler
	Family   *family.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

// New builds the router. db is used by /health; emailService may be nil,
// in which case the test-email endpoint is not mounted.
func New(cfg *config.Config, db Pinger, h Handlers, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	router.GET("/health", Health(db))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	public := router.Group("/auth")
	{
		public.POST("/register", h.User.Register)
		public.POST("/login", h.User.Login)
		public.POST("/refresh", h.User.RefreshToken)
	}

	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/me", h.User.GetMe)

		protected.GET("/classes", h.Class.ListClasses)
		protected.GET("/classes/:classID", h.Class.GetClass)
		protected.GET("/classes/:classID/next", h.Class.NextOccurrence)
		protected.GET("/classes/:classID/occurrences", h.Class.Upcoming)
		protected.GET("/classes/:classID/occurrences/:date/bookings", h.Booking.Roster)

		protected.POST("/bookings", h.Booking.CreateBooking)
		protected.GET("/bookings", h.Booking.ListBookings)
		protected.GET("/bookings/:bookingID", h.Booking.GetBooking)
		protected.POST("/bookings/:bookingID/approve", h.Booking.ApproveBooking)
		protected.POST("/bookings/:bookingID/decline", h.Booking.DeclineBooking)
		protected.POST("/bookings/:bookingID/cancel", h.Booking.CancelBooking)

		protected.POST("/trainings", h.Training.CreateRequest)
		protected.GET("/trainings", h.Training.ListRequests)
		protected.GET("/trainings/:requestID", h.Training.GetRequest)
		protected.POST("/trainings/:requestID/accept", h.Training.AcceptRequest)
		protected.POST("/trainings/:requestID/decline", h.Training.DeclineRequest)
		protected.POST("/trainings/:requestID/complete", h.Training.CompleteRequest)
	}

	coach := router.Group("/")
	coach.Use(auth.AuthMiddleware(cfg.JWTSecret), auth.RequireRole(auth.RoleCoach))
	{
		coach.POST("/classes", h.Class.CreateClass)
		coach.PUT("/classes/:classID", h.Class.UpdateClass)
		coach.POST("/classes/:classID/cancel", h.Class.CancelClass)
		coach.POST("/classes/:classID/complete", h.Class.CompleteClass)
		if emailService != nil {
			coach.GET("/test-email", TestEmail(emailService))
		}
	}

	parent := router.Group("/family")
	parent.Use(auth.AuthMiddleware(cfg.JWTSecret), auth.RequireRole(auth.RoleParent))
	{
		parent.POST("/links", h.Family.CreateLink)
		parent.GET("/links", h.Family.ListLinks)
		parent.DELETE("/links/:athleteID", h.Family.DeleteLink)
	}

	athlete := router.Group("/family")
	athlete.Use(auth.AuthMiddleware(cfg.JWTSecret), auth.RequireRole(auth.RoleAthlete))
	{
		athlete.GET("/requests", h.Family.ListRequests)
		athlete.POST("/links/:linkID/confirm", h.Family.ConfirmLink)
		athlete.POST("/links/:linkID/reject", h.Family.RejectLink)
	}

	return &Server{
		router: router,
		config: cfg,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
