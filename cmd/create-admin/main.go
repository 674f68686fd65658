package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/noah-isme/internship-api/internal/bootstrap"
	"github.com/noah-isme/internship-api/internal/config"
	"github.com/noah-isme/internship-api/internal/database"
	"github.com/noah-isme/internship-api/internal/repository"
	"github.com/noah-isme/internship-api/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var input bootstrap.AdminInput

	flagSet := pflag.NewFlagSet("create-admin", pflag.ContinueOnError)
	flagSet.StringVar(&input.Email, "email", "", "administrator e-mail (prompted when empty)")
	flagSet.StringVar(&input.FullName, "name", "", "administrator full name (prompted when empty)")
	flagSet.StringVar(&input.Phone, "phone", "", "optional phone number")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.WarnLevel)

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("=== Create Administrator ===")
	if input.Email == "" {
		if input.Email, err = prompt(reader, "Email: "); err != nil {
			return err
		}
	}
	if input.FullName == "" {
		if input.FullName, err = prompt(reader, "Full name: "); err != nil {
			return err
		}
	}
	if input.Password, err = readPassword(reader); err != nil {
		return err
	}

	db, err := database.Open(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	hasher := service.NewPasswordHasher(cfg.BcryptCost)
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)
	identity := service.NewIdentityService(users, repository.NewProfileRepository(db), database.NewManager(db, logger), hasher, activity, logger)

	user, err := bootstrap.CreateAdmin(context.Background(), identity, users, hasher, input)
	if err != nil {
		return err
	}

	fmt.Printf("Administrator %s created (id %d).\n", user.Email, user.ID)
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// trimLineEnding drops the line terminator only. Passwords may begin or end with spaces.
func trimLineEnding(line string) string {
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
}

// readPassword reads the password twice with echo disabled. Without a terminal it falls back to a
// single line on stdin so the command can be scripted.
func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		password := trimLineEnding(line)
		if err := service.CheckPasswordPolicy(password); err != nil {
			return "", err
		}
		return password, nil
	}

	fmt.Print("Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if err := service.CheckPasswordPolicy(string(first)); err != nil {
		return "", err
	}

	fmt.Print("Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
