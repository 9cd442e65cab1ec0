package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pitchline/pitchline"
	"github.com/pitchline/pitchline/api/middleware"
	"github.com/pitchline/pitchline/config"
	"github.com/pitchline/pitchline/internal/apierror"
)

type Api struct {
	pitchline *pitchline.Pitchline
	router    *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/review-tasks", a.CreateReviewTask)
	router.GET("/review-tasks/:id", a.GetReviewTask)
	router.GET("/review-tasks", a.GetReviewTasksByStatus)
	router.POST("/review-tasks/:id/approve", a.ApproveReviewTask)
	router.POST("/review-tasks/:id/reject", a.RejectReviewTask)
	router.POST("/review-tasks/bulk-approve", a.BulkApproveReviewTasks)
	router.POST("/review-tasks/bulk-reject", a.BulkRejectReviewTasks)

	router.POST("/matches", a.CreateMatchSuggestion)
	router.GET("/matches/:id", a.GetMatchSuggestion)

	router.POST("/pitches", a.CreatePitch)
	router.GET("/pitches/:id", a.GetPitch)
	router.PATCH("/pitches/:id/content", a.UpdatePitchContent)
	router.PATCH("/pitches/:id/approve", a.ApprovePitch)
	router.POST("/pitches/:id/send", a.SendPitch)
	router.POST("/pitches/:id/schedule", a.SchedulePitch)
	router.POST("/pitches/bulk-send", a.BulkSendPitches)
	router.POST("/pitches/:id/follow-ups", a.CreateFollowUp)
	router.POST("/pitches/:id/follow-ups/schedule", a.ScheduleFollowUp)
	router.POST("/pitches/:id/events", a.RecordDeliveryEvent)

	router.PUT("/threads/:thread_id/draft", a.EditDraft)
	router.POST("/threads/:thread_id/draft/flush", a.FlushDraft)
	router.POST("/threads/:thread_id/draft/send", a.SendDraft)
	router.GET("/threads/:thread_id/draft", a.GetDraftByThread)
	router.GET("/drafts/:id", a.GetDraft)

	return a.router
}

func NewAPI(p *pitchline.Pitchline) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	r.POST("/webhook", func(c *gin.Context) {
		var payload map[string]interface{}
		err := c.Bind(&payload)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(payload)
		c.JSON(200, "webhook received")
	})

	return &Api{pitchline: p, router: r}
}

func apiError(c *gin.Context, err error) {
	c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
}
