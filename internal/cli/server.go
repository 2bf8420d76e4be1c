package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"trivia-service/internal/app"
	"trivia-service/internal/config"
	"trivia-service/internal/seed"
	transport "trivia-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	driver, _ := cfg.StoreDriver()
	if driver == config.DriverMemory {
		if err := seedDemo(ctx, store, cfg.Award()); err != nil {
			return err
		}
	}

	timeout := config.Duration(cfg.Server.RequestTimeout, 5*time.Second)
	board := app.NewLeaderboard(store, cfg.Quiz.LeaderboardSize, timeout)
	questions := app.NewQuestionService(store, store, app.WithAward(cfg.Award()), app.WithNotifier(board))
	people := app.NewPeopleService(store, board, cfg.Award())

	corsOrigin := cfg.Server.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "http://localhost:5173"
	}
	gin.SetMode(gin.ReleaseMode)
	router := transport.NewRouter(questions, people, board, transport.Options{
		RequestTimeout: timeout,
		CORSOrigin:     corsOrigin,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return board.Run(gctx)
	})
	g.Go(func() error {
		log.Printf("starting trivia service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// seedDemo fills an empty in-memory store so the demo has something to play.
func seedDemo(ctx context.Context, store app.Store, award int) error {
	questions, err := seed.Questions()
	if err != nil {
		return err
	}
	if _, err := importQuestions(ctx, store, questions); err != nil {
		return err
	}
	profiles, err := seed.People()
	if err != nil {
		return err
	}
	_, err = seedPeople(ctx, store, profiles, award)
	return err
}
