package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/avoronov/periodvault/internal/client/services"
	"github.com/avoronov/periodvault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and password and attempts to
// create a new account.
//
// On success it prints "Success!" and returns nil. The password byte slice
// is securely wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Register(ctx, userName, password); err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials, authenticates, resolves the
// encryption key, and builds this session's state store. The password is
// securely wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	session, key, err := a.authService.SignIn(ctx, userName, password)
	if err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.state = services.NewStateStore(a.ledger, a.db, session.UserID, key)
	a.userName = userName
	log.Printf("Login successful")
	return nil
}

// Logout clears the locally cached state and forgets the session.
func (a *App) Logout(ctx context.Context) error {
	if a.state != nil {
		if err := a.state.ClearCache(ctx); err != nil {
			return err
		}
	}
	if err := a.authService.SignOut(ctx); err != nil {
		return err
	}
	a.state = nil
	a.userName = ""
	return nil
}
