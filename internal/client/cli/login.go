package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/rentspace/internal/models"
)

func (c *Cli) runLogin(ctx context.Context, args []string) error {
	fs := c.newFlagSet("login")
	email := fs.String("email", "", "Account email")
	admin := fs.Bool("admin", false, "Login as administrator")
	passwordFile := fs.String("password-file", "", "Path to file containing password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind := models.KindUser
	if *admin {
		kind = models.KindAdmin
	}

	c.io.Println("=== Login ===")
	c.io.Println()

	addr, err := c.readValue(*email, "Email: ")
	if err != nil {
		return err
	}

	password, err := c.getPassword(*passwordFile, "Password: ")
	if err != nil {
		return err
	}

	c.io.Println("Authenticating...")

	sess, err := c.authService.Login(ctx, kind, addr, password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Account: %s (%s)\n", sess.Email, sess.Kind)
	c.io.Printf("Server:  %s\n", sess.Server)
	c.io.Println()
	c.io.Println("Your session has been saved.")

	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.authService.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	c.io.Println("✓ Logged out")
	return nil
}

func (c *Cli) runRefresh(ctx context.Context) error {
	rotated, err := c.authService.Refresh(ctx)
	if err != nil {
		return err
	}

	if rotated {
		c.io.Println("✓ Session refreshed, refresh token rotated")
	} else {
		c.io.Println("✓ Access token refreshed")
	}
	return nil
}
