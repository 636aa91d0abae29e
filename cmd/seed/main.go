// Command seed loads job listings from a YAML file into the database.
//
//	go run ./cmd/seed -file cmd/seed/jobs.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/BradenHooton/jobboard/internal/config"
	"github.com/BradenHooton/jobboard/internal/database"
	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/BradenHooton/jobboard/internal/repositories"
	"github.com/BradenHooton/jobboard/internal/services"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML document layout
type seedFile struct {
	Jobs []seedJob `yaml:"jobs"`
}

type seedJob struct {
	Title        string   `yaml:"title"`
	Company      string   `yaml:"company"`
	Location     string   `yaml:"location"`
	Salary       string   `yaml:"salary"`
	Description  string   `yaml:"description"`
	Requirements []string `yaml:"requirements"`
	Benefits     []string `yaml:"benefits"`
	Type         string   `yaml:"type"`
	Published    *bool    `yaml:"published"`
}

func (j seedJob) input() services.CreateJobInput {
	requirements := j.Requirements
	if requirements == nil {
		requirements = []string{}
	}
	return services.CreateJobInput{
		Title:        j.Title,
		Company:      j.Company,
		Location:     j.Location,
		Salary:       j.Salary,
		Description:  j.Description,
		Requirements: requirements,
		Benefits:     j.Benefits,
		Type:         j.Type,
		Published:    j.Published,
	}
}

func parseSeed(r io.Reader) ([]services.CreateJobInput, error) {
	var doc seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	inputs := make([]services.CreateJobInput, 0, len(doc.Jobs))
	for _, j := range doc.Jobs {
		inputs = append(inputs, j.input())
	}
	return inputs, nil
}

func main() {
	path := flag.String("file", "cmd/seed/jobs.yaml", "YAML file with a top-level jobs list")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(*path, logger); err != nil {
		logger.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	inputs, err := parseSeed(f)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db.Pool, logger); err != nil {
		return err
	}

	jobs := services.NewJobService(repositories.NewJobRepository(db), logger)
	created := 0
	for i, input := range inputs {
		job, err := jobs.Create(ctx, "seed", input)
		if err != nil {
			var verr *models.ValidationError
			if errors.As(err, &verr) {
				logger.Warn("skipping invalid job", slog.Int("index", i), slog.String("field", verr.Field), slog.String("reason", verr.Message))
				continue
			}
			return fmt.Errorf("job %d: %w", i, err)
		}
		created++
		logger.Info("job created", slog.String("job_id", job.ID), slog.String("title", job.Title))
	}

	logger.Info("seed complete", slog.Int("created", created), slog.Int("total", len(inputs)))
	return nil
}
