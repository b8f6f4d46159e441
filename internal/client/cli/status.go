package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	st, err := c.authService.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	if !st.LoggedIn() {
		c.io.Println("Status: Not authenticated")
		c.io.Println()
		c.io.Println("Run 'rentspace login' to authenticate.")
	} else {
		sess := st.Session
		c.io.Println("Status: Authenticated")
		c.io.Printf("Account: %s (%s)\n", sess.Email, sess.Kind)
		c.io.Printf("ID:      %s\n", sess.PrincipalID)
		c.io.Printf("Server:  %s\n", sess.Server)
		c.io.Printf("Saved:   %s\n", sess.SavedAt.Format(time.RFC3339))
		if sess.Server != c.server {
			c.io.Printf("⚠️  Session belongs to %s, current server is %s\n", sess.Server, c.server)
		}
	}

	if st.Pending != nil {
		c.io.Println()
		c.io.Printf("Pending registration: %s (since %s)\n", st.Pending.Email, st.Pending.CreatedAt.Format(time.RFC3339))
		c.io.Println("Run 'rentspace verify' with the code from the email.")
	}

	return nil
}

func (c *Cli) runWhoAmI(ctx context.Context) error {
	user, err := c.authService.WhoAmI(ctx)
	if err != nil {
		return err
	}

	c.io.Printf("ID:       %s\n", user.ID)
	c.io.Printf("Name:     %s\n", user.Name)
	c.io.Printf("Email:    %s\n", user.Email)
	c.io.Printf("Verified: %t\n", user.Verified)
	c.io.Printf("Active:   %t\n", user.Active)
	if user.Profile != nil {
		c.io.Printf("Level:    %d\n", user.Profile.Level())
	}
	return nil
}
