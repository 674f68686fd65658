package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/noah-isme/internship-api/internal/bootstrap"
	"github.com/noah-isme/internship-api/internal/config"
	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/repository"
	"github.com/noah-isme/internship-api/internal/service"
)

const resetConfirmation = "yes"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		filePath string
		reset    bool
	)

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.StringVar(&filePath, "file", "", "fixture file to load instead of the built-in sample accounts")
	flagSet.BoolVar(&reset, "reset", false, "drop and recreate every table before seeding")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	fixtures, err := loadFixtures(filePath)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.InfoLevel)

	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if reset {
		if !confirmReset() {
			fmt.Println("Reset cancelled.")
			return nil
		}
		if err := database.Reset(db); err != nil {
			return err
		}
		fmt.Println("✓ Database schema recreated")
	} else if err := database.Migrate(db); err != nil {
		return err
	}

	seeds, err := fixtures.SeedUsers()
	if err != nil {
		return err
	}

	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	identity := service.NewIdentityService(
		repository.NewUserRepository(db),
		repository.NewProfileRepository(db),
		database.NewManager(db, logger),
		service.NewPasswordHasher(cfg.BcryptCost),
		activity,
		logger,
	)

	report, err := service.NewSeedService(identity, logger).SeedUsers(context.Background(), seeds)
	for _, email := range report.Skipped {
		fmt.Printf("✗ %s already exists, skipped\n", email)
	}
	if err != nil {
		return err
	}
	fmt.Printf("✓ %d sample users created\n", len(report.Created))

	printCredentials(fixtures)
	return nil
}

func loadFixtures(path string) (bootstrap.Fixtures, error) {
	if path == "" {
		return bootstrap.DefaultFixtures()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return bootstrap.Fixtures{}, fmt.Errorf("failed to read fixtures: %w", err)
	}
	return bootstrap.ParseFixtures(data)
}

func confirmReset() bool {
	fmt.Printf("This will DELETE all data. Type %q to continue: ", resetConfirmation)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line) == resetConfirmation
}

func printCredentials(fixtures bootstrap.Fixtures) {
	rule := strings.Repeat("=", 50)
	fmt.Println()
	fmt.Println(rule)
	fmt.Println("SAMPLE LOGIN CREDENTIALS:")
	fmt.Println(rule)
	for _, entry := range fixtures.Users {
		fmt.Printf("%s:\n  Email: %s\n  Password: %s\n", strings.ToUpper(entry.Role), entry.Email, entry.Password)
	}
	fmt.Println(rule)
}
