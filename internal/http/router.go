// README: HTTP router registration.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"citycab/internal/http/handlers"
	"citycab/internal/http/middleware"
	"citycab/internal/modules/account"
	"citycab/internal/modules/booking"
	"citycab/internal/modules/citygraph"
	"citycab/internal/modules/fleet"
)

// RouterDeps carries everything the handlers call into.
type RouterDeps struct {
	Graph    *citygraph.Graph
	Fleet    *fleet.Service
	Accounts *account.Service
	Rides    interface {
		handlers.RideLister
		handlers.Counter
	}
	Booking  *booking.Service
	Sessions *booking.Manager
	Logger   *slog.Logger

	// BookingRPS limits how fast new booking sessions may be opened.
	BookingRPS   float64
	BookingBurst int
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestIDs(), middleware.Recovery(d.Logger), middleware.Logging(d.Logger))

	r.GET("/health", handlers.Health)

	api := r.Group("/api")

	bookingHandler := handlers.NewBookingHandler(d.Sessions, d.Booking)
	api.POST("/bookings", middleware.RateLimit(d.BookingRPS, d.BookingBurst), bookingHandler.Create)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	api.POST("/bookings/:id/class", bookingHandler.ChooseClass)
	api.POST("/bookings/:id/verify", bookingHandler.Verify)
	api.POST("/bookings/:id/rating", bookingHandler.Rate)
	api.POST("/rides/:booking_id/rating", bookingHandler.RateRide)
	api.GET("/quote", bookingHandler.Quote)

	locationHandler := handlers.NewLocationHandler(d.Graph)
	api.GET("/locations", locationHandler.List)

	accountHandler := handlers.NewAccountHandler(d.Accounts, d.Rides)
	api.POST("/accounts", accountHandler.Create)
	api.GET("/accounts/:id", accountHandler.Get)
	api.POST("/accounts/:id/wallet", accountHandler.TopUp)
	api.PUT("/accounts/:id/payment-method", accountHandler.SetPaymentMethod)
	api.GET("/riders/:id/rides", accountHandler.Rides)

	driverHandler := handlers.NewDriverHandler(d.Fleet, d.Graph)
	api.POST("/drivers", driverHandler.Create)
	api.GET("/drivers", driverHandler.List)

	adminHandler := handlers.NewAdminHandler(d.Accounts, d.Rides, d.Fleet.Index().Len)
	api.GET("/admin/summary", adminHandler.Summary)

	return r
}
