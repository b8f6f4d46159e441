package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runRegister(ctx context.Context, args []string) error {
	fs := c.newFlagSet("register")
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Email, the one-time code is sent there")
	phone := fs.String("phone", "", "Phone number (optional)")
	passwordFile := fs.String("password-file", "", "Path to file containing password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c.io.Println("=== Registration ===")
	c.io.Println()

	fullName, err := c.readValue(*name, "Name: ")
	if err != nil {
		return err
	}
	addr, err := c.readValue(*email, "Email: ")
	if err != nil {
		return err
	}

	password, err := c.getPassword(*passwordFile, "Password (min 8 chars): ")
	if err != nil {
		return err
	}

	if *passwordFile == "" && !c.passwordFromEnv() {
		confirm, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	c.io.Println("Registering user...")

	pending, err := c.authService.Register(ctx, fullName, addr, password, *phone)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Printf("✓ A one-time code has been sent to %s\n", pending.Email)
	c.io.Println("Run 'rentspace verify -otp CODE' to finish registration.")

	return nil
}

func (c *Cli) runVerify(ctx context.Context, args []string) error {
	fs := c.newFlagSet("verify")
	otp := fs.String("otp", "", "One-time code from the email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	code, err := c.readValue(*otp, "Code: ")
	if err != nil {
		return err
	}

	sess, err := c.authService.Verify(ctx, code)
	if err != nil {
		return err
	}

	c.io.Println("✓ Email verified, you are logged in")
	c.io.Printf("Account: %s\n", sess.Email)
	return nil
}
