package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ListPeriods(ctx context.Context) error
	NewPeriod(ctx context.Context) error
	SelectPeriod(ctx context.Context) error
	Show(ctx context.Context) error
	AddAccount(ctx context.Context) error
	RemoveAccount(ctx context.Context) error
	SetAmount(ctx context.Context) error
	DeletePeriod(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the PeriodVault CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers log
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pv> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (p)eriods, new, select, show, addaccount, removeaccount, setamount, delperiod, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "p", "periods":
			_ = a.ListPeriods(ctx)

		case "new":
			_ = a.NewPeriod(ctx)

		case "select":
			_ = a.SelectPeriod(ctx)

		case "show":
			_ = a.Show(ctx)

		case "addaccount":
			_ = a.AddAccount(ctx)

		case "removeaccount":
			_ = a.RemoveAccount(ctx)

		case "setamount":
			_ = a.SetAmount(ctx)

		case "delperiod":
			_ = a.DeletePeriod(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
