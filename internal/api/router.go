package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"slot-booking-backend/internal/mw"
	"slot-booking-backend/internal/store"
)

// RouterOptions carries everything the HTTP layer needs.
// Cache backs GET /api/availability and must be flushed whenever a slot is claimed.
type RouterOptions struct {
	Store          store.Store
	Booking        Claimer
	Cache          *mw.ResponseCache
	CacheTTL       time.Duration
	RateLimiter    *mw.IPRateLimiter
	WebPush        *webpush.Options
	AllowedOrigins []string
	TrustedProxies []string
	Logger         *zap.Logger
}

// NewRouter creates and configures a new Gin router.
func NewRouter(opts RouterOptions) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(log))
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies; trusting none", zap.Error(err))
		r.SetTrustedProxies(nil)
	}
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	handler := NewHandler(opts.Store, opts.Booking, opts.WebPush, log)

	r.GET("/", handler.GetRoot)
	r.GET("/healthz", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if opts.RateLimiter != nil {
		api.Use(mw.RateLimiter(opts.RateLimiter))
	}
	{
		availability := []gin.HandlerFunc{handler.GetAvailability}
		if opts.Cache != nil {
			availability = append([]gin.HandlerFunc{mw.Cache(opts.Cache, opts.CacheTTL)}, availability...)
		}
		api.GET("/availability", availability...)
		api.GET("/dates", handler.GetDates)
		api.POST("/book", handler.PostBooking)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}

// corsConfig allows the configured frontend origins, or any origin when none is set.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
