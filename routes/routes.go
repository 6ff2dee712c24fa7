package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/lottoplay/housie-backend/controllers"
	"github.com/lottoplay/housie-backend/services"
)

func SetupRoutes(r *gin.Engine, mgr *services.Manager, store services.Store) {
	rooms := controllers.NewRoomController(mgr)
	games := controllers.NewGameController(mgr)
	tickets := controllers.NewTicketController(mgr, store)

	api := r.Group("/api")

	// ----------------------
	// User routes
	// ----------------------
	api.POST("/users", controllers.RegisterUser)
	api.GET("/users/:id", controllers.GetUser)

	// ----------------------
	// Room routes
	// ----------------------
	api.GET("/rooms", rooms.List)
	api.GET("/rooms/:roomId", rooms.Detail)
	api.GET("/rooms/:roomId/state", games.State)
	api.GET("/rooms/:roomId/winners", games.Winners)

	authed := api.Group("", controllers.RequireUser())

	authed.POST("/rooms", rooms.Create)

	// ----------------------
	// Game routes (start/draw/end are organizer-only, enforced by the
	// room session)
	// ----------------------
	authed.POST("/rooms/:roomId/start", games.Start)
	authed.POST("/rooms/:roomId/draw", games.Draw)
	authed.POST("/rooms/:roomId/end", games.End)
	authed.POST("/rooms/:roomId/claim", games.Claim)

	// ----------------------
	// Ticket routes
	// ----------------------
	authed.POST("/tickets", tickets.Buy)
	authed.GET("/tickets", tickets.ListMine)
	authed.GET("/tickets/:ticketId", tickets.Detail)
	authed.GET("/tickets/:ticketId/check", tickets.Check)
}
