package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trivia-service/internal/app"
)

// Options configures the router.
type Options struct {
	RequestTimeout time.Duration
	CORSOrigin     string
}

// NewRouter wires the REST API and the leaderboard websocket.
func NewRouter(questions *app.QuestionService, people *app.PeopleService, board *app.Leaderboard, opts Options) *gin.Engine {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), cors(opts.CORSOrigin))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	ws := NewWSHandler(board)
	r.GET("/ws/leaderboard", gin.WrapF(ws.ServeWS))

	api := r.Group("/api", requestTimeout(opts.RequestTimeout))

	qh := &questionHandlers{service: questions}
	api.GET("/questions/random", qh.random)
	api.POST("/questions/check-answer", qh.checkAnswer)

	ph := &peopleHandlers{service: people}
	api.GET("/people", ph.list)
	api.POST("/people", ph.create)
	api.GET("/people/:id", ph.get)
	api.PUT("/people/:id", ph.update)
	api.DELETE("/people/:id", ph.delete)
	api.POST("/people/:id/increase-score", ph.increaseScore)

	api.GET("/leaderboard", func(c *gin.Context) {
		lb, err := board.Snapshot(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, lb)
	})

	return r
}

// requestTimeout bounds every store call made while serving the request.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
