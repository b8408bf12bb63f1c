// Package http is the controller edge: it binds requests, pulls the actor
// from the JWT and hands plain identifiers to the services. No scheduling
// rules live here.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/juva99/yoop-sub001/internal/service"
)

func NewRouter(games *service.SchedulingSvc, rels *service.RelationSvc) *gin.Engine {
	r := gin.Default()

	gh := NewGameHandler(games)
	fh := NewFieldHandler(games)
	rh := NewRelationHandler(rels)

	v1 := r.Group("/v1")
	{
		v1.GET("/fields", fh.List)
		v1.POST("/fields", JWTAuth(), RequireRole("MANAGER", "ADMIN"), fh.Create)

		v1.GET("/games", gh.List)
		v1.GET("/games/:id", gh.Get)

		secured := v1.Group("")
		secured.Use(JWTAuth())
		{
			secured.POST("/games", gh.Create)
			secured.POST("/games/:id/cancel", gh.Cancel)
			secured.POST("/games/:id/reschedule", gh.Reschedule)
			secured.POST("/games/:id/join", gh.Join)
			secured.POST("/games/:id/leave", gh.Leave)
			secured.POST("/games/:id/transfer", gh.Transfer)
			secured.DELETE("/games/:id/participants/:userId", gh.RemoveParticipant)

			manager := secured.Group("")
			manager.Use(RequireRole("MANAGER", "ADMIN"))
			manager.POST("/games/:id/approve", gh.Approve)
			manager.POST("/games/:id/reject", gh.Reject)

			secured.GET("/friends", rh.List)
			secured.DELETE("/friends/:userId", rh.Unfriend)
			secured.GET("/friends/requests", rh.Pending)
			secured.POST("/friends/requests", rh.Request)
			secured.POST("/friends/requests/:id/respond", rh.Respond)
		}
	}
	return r
}
