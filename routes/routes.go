package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"go-patrol/classifier"
	"go-patrol/handlers"
	"go-patrol/location"
	"go-patrol/metrics"
)

const corsMaxAgeHours = 12

// Deps are the collaborators the router injects into handlers.
type Deps struct {
	Service    handlers.PatrolService
	Classifier *classifier.Classifier
	Resolver   *location.Resolver
	Memo       handlers.MemoDefaults
	Gatherer   prometheus.Gatherer // nil disables /metrics
	ClientURL  string              // allowed CORS origin, empty for none
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()
	if d.ClientURL != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  []string{d.ClientURL},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders: []string{"Content-Disposition", "X-Report-Pages", "X-Duplicates-Removed"},
			MaxAge:        corsMaxAgeHours * time.Hour,
		}))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Hello, welcome to Go Patrol!",
		})
	})

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	// api routes
	api := r.Group("/api/patrol")
	{
		api.POST("/reports", func(c *gin.Context) {
			handlers.GenerateReportHandler(c, d.Service, d.Memo)
		})
		api.GET("/summary", func(c *gin.Context) {
			handlers.GetSummaryHandler(c, d.Service)
		})
		api.GET("/incidents/:id", func(c *gin.Context) {
			handlers.GetIncidentHandler(c, d.Service)
		})
		api.POST("/classify", func(c *gin.Context) {
			handlers.ClassifyHandler(c, d.Classifier)
		})
		api.POST("/resolve-location", func(c *gin.Context) {
			handlers.ResolveLocationHandler(c, d.Resolver)
		})
		api.POST("/cleanup", func(c *gin.Context) {
			handlers.CleanupHandler(c, d.Service)
		})
		api.POST("/import", func(c *gin.Context) {
			handlers.ImportHandler(c, d.Service)
		})
	}

	return r
}
