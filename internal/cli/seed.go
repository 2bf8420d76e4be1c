package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/seed"
)

// NewImportQuestionsCmd replaces the question bank.
func NewImportQuestionsCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import-questions",
		Short: "Replace the question bank with the built-in set or --file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportQuestions(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "JSON or YAML question file (defaults to the built-in set)")
	return cmd
}

// NewSeedPeopleCmd inserts the demo profiles.
func NewSeedPeopleCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-people",
		Short: "Insert demo profiles with starting scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeedPeople(cmd.Context(), *configPath)
		},
	}
}

func runImportQuestions(ctx context.Context, configPath, file string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	questions, err := seed.Questions()
	if file != "" {
		questions, err = seed.LoadQuestions(file)
	}
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := importQuestions(ctx, store, questions)
	if err != nil {
		return err
	}
	log.Printf("imported %d questions", n)
	return nil
}

func importQuestions(ctx context.Context, store app.Store, questions []domain.Question) (int, error) {
	return app.NewQuestionService(store, store).Import(ctx, questions)
}

func runSeedPeople(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	profiles, err := seed.People()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := seedPeople(ctx, store, profiles, cfg.Award())
	if err != nil {
		return err
	}
	log.Printf("seeded %d people", n)
	return nil
}

// seedPeople creates each profile and credits its starting score through the
// regular increment path.
func seedPeople(ctx context.Context, store app.Store, profiles []seed.Profile, award int) (int, error) {
	people := app.NewPeopleService(store, nil, award)
	for i, p := range profiles {
		created, err := people.Create(ctx, domain.ProfileUpdate{Name: p.Name, Age: p.Age, Gender: p.Gender, Avatar: p.Avatar})
		if err != nil {
			return i, err
		}
		if p.Score > 0 {
			if _, err := store.IncrementScore(ctx, created.ID, p.Score); err != nil {
				return i, err
			}
		}
	}
	return len(profiles), nil
}
