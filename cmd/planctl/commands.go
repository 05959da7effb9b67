package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"backend-itinerary/internal/auth"
	"backend-itinerary/internal/experience"
	"backend-itinerary/internal/gazetteer"
	"backend-itinerary/internal/logger"
	"backend-itinerary/internal/planner"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "planctl",
		Short:         "Dry-run the itinerary planner against a YAML catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().String("log-level", "warn", "Log level for planner diagnostics")

	root.AddCommand(newGenerateCmd(), newResolveCmd(), newTokenCmd())
	return root
}

// prefsFile mirrors planner.Preferences with plain strings for YAML input.
type prefsFile struct {
	Area       string   `yaml:"area"`
	StartDate  string   `yaml:"start_date"`
	EndDate    string   `yaml:"end_date"`
	Categories []string `yaml:"categories"`
	Companions []string `yaml:"companions"`
	TimeOfDay  string   `yaml:"time_of_day"`
	Budget     string   `yaml:"budget"`
	Intensity  string   `yaml:"activity_intensity"`
	Distance   string   `yaml:"travel_distance"`
	Title      string   `yaml:"title"`
	Notes      string   `yaml:"notes"`
}

func loadPrefs(path string) (planner.Preferences, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return planner.Preferences{}, fmt.Errorf("read preferences: %w", err)
	}
	var f prefsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return planner.Preferences{}, fmt.Errorf("parse preferences: %w", err)
	}

	p := planner.Preferences{
		Area:       f.Area,
		Categories: f.Categories,
		Companions: f.Companions,
		TimeOfDay:  planner.TimeOfDay(f.TimeOfDay),
		Budget:     planner.Budget(f.Budget),
		Intensity:  planner.Intensity(f.Intensity),
		Distance:   planner.DistancePreference(f.Distance),
		Title:      f.Title,
		Notes:      f.Notes,
	}
	if f.StartDate != "" {
		if p.StartDate, err = planner.ParseDate(f.StartDate); err != nil {
			return planner.Preferences{}, err
		}
	}
	if f.EndDate != "" {
		if p.EndDate, err = planner.ParseDate(f.EndDate); err != nil {
			return planner.Preferences{}, err
		}
	}
	return p, nil
}

func newGenerateCmd() *cobra.Command {
	var (
		catalogPath string
		prefsPath   string
		traveler    string
		seed        int64
		now         string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a draft itinerary and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			log := logger.NewWithWriter(cmd.ErrOrStderr(), "planctl", level)

			exps, err := experience.LoadFixtureFile(catalogPath)
			if err != nil {
				return err
			}
			prefs, err := loadPrefs(prefsPath)
			if err != nil {
				return err
			}

			opts := []planner.Option{planner.WithLogger(log)}
			if cmd.Flags().Changed("seed") {
				opts = append(opts, planner.WithSeed(seed))
			}
			if now != "" {
				at, err := time.Parse(time.RFC3339, now)
				if err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
				opts = append(opts, planner.WithClock(planner.ClockFunc(func() time.Time { return at })))
			}

			engine := planner.NewEngine(experience.NewStaticCatalog(exps), gazetteer.Default(), opts...)
			draft, err := engine.Generate(context.Background(), traveler, prefs)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			var empty *planner.NoCandidatesError
			if errors.As(err, &empty) {
				if encErr := enc.Encode(map[string]any{"error": planner.ErrNoExperiences.Error(), "diagnostics": empty.Breakdown}); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return err
			}
			return enc.Encode(draft)
		},
	}
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "YAML experience catalog (required)")
	cmd.Flags().StringVarP(&prefsPath, "prefs", "p", "", "YAML traveler preferences (required)")
	cmd.Flags().StringVar(&traveler, "traveler", "planctl", "Traveler id recorded on the draft")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for reproducible drafts")
	cmd.Flags().StringVar(&now, "now", "", "Override the current time (RFC3339)")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("prefs")
	return cmd
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <area>",
		Short: "Show the reference coordinate the planner uses for an area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := gazetteer.Default()
			name := r.Normalize(args[0])
			p, ok := r.Resolve(args[0])
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: no coordinate, matching on %q\n", name, r.BaseName(args[0]))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %.4f,%.4f\n", name, p.Lat, p.Lng)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		user   string
		secret string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for calling the API locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return errors.New("--secret or JWT_SECRET required")
			}
			token, err := auth.SignToken(secret, user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "Traveler id (required)")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (defaults to JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTokenTTL, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
