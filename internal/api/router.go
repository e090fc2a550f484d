package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/api/handler"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/api/middleware"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

type Services struct {
	Auth     handler.AuthService
	Property handler.PropertyService
	Booking  handler.BookingService
	Layout   handler.LayoutService
}

func SetupRouter(svc Services, authMw *middleware.AuthMiddleware, bookingLimiter *middleware.UserRateLimiter,
	wsManager *handler.WebSocketManager, log *zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(svc.Auth)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	rentalOnly := authMw.AuthorizeRole(domain.RoleRental)
	ownerOnly := authMw.AuthorizeRole(domain.RoleOwner)

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		propH := handler.NewPropertyHandler(svc.Property)
		propRoutes := v1.Group("/properties")
		{
			propRoutes.GET("", propH.ListApproved)
			propRoutes.GET("/nearby", propH.Nearby)
			propRoutes.GET("/:id", propH.Get)
			propRoutes.GET("/:id/slots", propH.Slots)

			propRoutes.POST("", rentalOnly, propH.Create)
			propRoutes.PUT("/:id/layout", rentalOnly, propH.UpdateLayout)
			propRoutes.GET("/:id/layout/validate", authMw.AuthorizeRole(domain.RoleRental, domain.RoleOwner), propH.ValidateLayout)

			propRoutes.PUT("/:id/approve", ownerOnly, propH.Approve)
			propRoutes.PUT("/:id/status", ownerOnly, propH.SetActive)
			propRoutes.DELETE("/:id", ownerOnly, propH.Delete)
			propRoutes.GET("/:id/layout/debug", ownerOnly, propH.DebugLayout)
		}

		rentalRoutes := v1.Group("/rental")
		rentalRoutes.Use(rentalOnly)
		{
			rentalRoutes.GET("/properties", propH.Mine)
			rentalRoutes.GET("/stats", propH.RentalStats)
		}

		ownerRoutes := v1.Group("/owner")
		ownerRoutes.Use(ownerOnly)
		{
			ownerRoutes.GET("/properties/pending", propH.Pending)
		}

		bookingH := handler.NewBookingHandler(svc.Booking)
		bookingRoutes := v1.Group("/bookings")
		{
			if bookingLimiter != nil {
				bookingRoutes.POST("", bookingLimiter.Limit(), bookingH.Create)
			} else {
				bookingRoutes.POST("", bookingH.Create)
			}
			bookingRoutes.GET("/mine", bookingH.Mine)
			bookingRoutes.PUT("/:id/cancel", bookingH.Cancel)
		}

		layoutH := handler.NewLayoutHandler(svc.Layout)
		layoutRoutes := v1.Group("/layouts")
		{
			layoutRoutes.GET("/categories", layoutH.Categories)
			layoutRoutes.POST("/templates", layoutH.Templates)
			layoutRoutes.POST("/generate", layoutH.Generate)
			layoutRoutes.POST("/edit", layoutH.Edit)
			layoutRoutes.POST("/import-dxf", layoutH.ImportDXF)
		}
	}
	return r
}
