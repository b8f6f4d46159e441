package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iudanet/rentspace/internal/client/auth"
	"github.com/iudanet/rentspace/internal/client/iocli"
	"github.com/iudanet/rentspace/internal/client/storage"
	"github.com/iudanet/rentspace/internal/models"
	pkgapi "github.com/iudanet/rentspace/pkg/api"
)

// PasswordEnv переменная окружения с паролем для неинтерактивного запуска
const PasswordEnv = "RENTSPACE_PASSWORD"

// AuthService операции авторизации, которые вызывают команды
type AuthService interface {
	Register(ctx context.Context, name, email, password, phone string) (*storage.PendingVerification, error)
	Verify(ctx context.Context, otp string) (*storage.Session, error)
	Login(ctx context.Context, kind models.PrincipalKind, email, password string) (*storage.Session, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (bool, error)
	Status(ctx context.Context) (auth.Status, error)
	WhoAmI(ctx context.Context) (*pkgapi.UserResponse, error)
}

var _ AuthService = (*auth.Service)(nil)

type Cli struct {
	io          iocli.IO
	authService AuthService
	server      string
}

func New(io iocli.IO, authService AuthService, server string) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		server:      server,
	}
}

// getPassword возвращает пароль по приоритету:
// 1. переменная окружения RENTSPACE_PASSWORD
// 2. файл из флага -password-file
// 3. ввод без эха
func (c *Cli) getPassword(passwordFile, prompt string) (string, error) {
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	if passwordFile != "" {
		content, err := os.ReadFile(passwordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return password, nil
}

// readValue возвращает значение флага или спрашивает его у пользователя
func (c *Cli) readValue(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	input, err := c.io.ReadInput(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return input, nil
}

func PrintUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `Rentspace Client

Usage:
  rentspace [OPTIONS] COMMAND [FLAGS]

Options:
  -version                 Show version information
  -server URL              Server URL (default: http://localhost:8080)
  -db PATH                 Path to local database (default: rentspace-client.db)

Commands:
  register                 Register new user, the server mails a one-time code
  verify                   Confirm registration with the code from the email
  login                    Login to server
  logout                   Logout from server
  refresh                  Exchange refresh token for a new access token
  status                   Show local session
  whoami                   Show the account of the current user

Password (highest to lowest priority):
  1. RENTSPACE_PASSWORD environment variable
  2. -password-file PATH
  3. Interactive prompt

Examples:
  rentspace register -name "Ada Lovelace" -email ada@example.com
  rentspace verify -otp 482913
  rentspace login -email ada@example.com
  rentspace -server https://api.example.com login -admin -email root@example.com
  rentspace whoami
`)
}

func (c *Cli) passwordFromEnv() bool {
	return os.Getenv(PasswordEnv) != ""
}
