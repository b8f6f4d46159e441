package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
)

// ErrUnknownCommand команда не поддерживается
var ErrUnknownCommand = errors.New("unknown command")

// Run выполняет команду. args не включают имя команды.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx, args)
	case "verify":
		return c.runVerify(ctx, args)
	case "login":
		return c.runLogin(ctx, args)
	case "logout":
		return c.runLogout(ctx)
	case "refresh":
		return c.runRefresh(ctx)
	case "status":
		return c.runStatus(ctx)
	case "whoami":
		return c.runWhoAmI(ctx)
	case "help":
		PrintUsage(c.io)
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

func (c *Cli) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.io)
	return fs
}
