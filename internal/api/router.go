package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/helen751/HIT-New-York-City-Mobility-Data-Explorer/internal/stats"
)

// NewRouter wires the query endpoints onto a gin engine.
func NewRouter(repo *Repository) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/trips", listTrips(repo))
		api.GET("/summary", summarize(repo))
		api.GET("/top-expensive", topExpensive(repo))
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func listTrips(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := c.Query("start")
		end := c.Query("end")
		if start == "" || end == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start and end are required"})
			return
		}
		sort := c.DefaultQuery("sort", "pickup_datetime")

		trips, err := repo.TripsBetween(c.Request.Context(), start, end, sort)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if trips == nil {
			trips = []TripRecord{}
		}
		c.JSON(http.StatusOK, trips)
	}
}

func summarize(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := repo.Summarize(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func topExpensive(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		k, err := strconv.Atoi(c.DefaultQuery("k", "10"))
		if err != nil || k < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "k must be a positive integer"})
			return
		}

		pool, err := repo.RankingPool(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		top := stats.TopK(pool, k)
		if top == nil {
			top = []TripRecord{}
		}
		c.JSON(http.StatusOK, top)
	}
}
