package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/avoronov/periodvault/internal/client/models"
)

var errNotLoggedIn = errors.New("not logged in")

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		printlnFn("Please login first")
		return errNotLoggedIn
	}
	return nil
}

// ListPeriods prints all periods, newest first.
func (a *App) ListPeriods(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	periods, err := a.state.FetchAllPeriods(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if len(periods) == 0 {
		printlnFn("No periods yet. Use 'new' to create one.")
		return nil
	}

	for _, p := range periods {
		printlnFn(fmt.Sprintf("%s  %s  (%d accounts)", p.ID, p.Label, len(p.Accounts)))
	}
	return nil
}

// NewPeriod creates a period, optionally copying accounts forward from an
// existing one.
func (a *App) NewPeriod(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	label, err := getSimpleText(a.reader, "Enter period name (e.g. 2026-08)", os.Stdout)
	if err != nil {
		return err
	}

	copyFrom, err := getSimpleText(a.reader, "Copy accounts from period id (empty to copy from the newest period)", os.Stdout)
	if err != nil {
		return err
	}

	p, err := a.state.CreatePeriod(ctx, label, copyFrom)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Created period %s (%s)", p.Label, p.ID))
	return nil
}

// SelectPeriod makes a period current for the following account commands.
func (a *App) SelectPeriod(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := getSimpleText(a.reader, "Enter period id", os.Stdout)
	if err != nil {
		return err
	}

	p, err := a.state.SelectPeriod(ctx, id)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Selected period %s", p.Label))
	return nil
}

// Show prints the selected period with its accounts.
func (a *App) Show(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	p, err := a.state.Selected(ctx)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Period %s (%s)", p.Label, p.ID))
	if len(p.Accounts) == 0 {
		printlnFn("  no accounts")
		return nil
	}
	for _, acc := range p.Accounts {
		printlnFn("  " + formatAccount(acc))
	}
	return nil
}

// DeletePeriod deletes a period by id.
func (a *App) DeletePeriod(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	id, err := getSimpleText(a.reader, "Enter period id to delete", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.state.DeletePeriod(ctx, id); err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn("Deleted")
	return nil
}

func formatAccount(acc models.Account) string {
	change := "n/a"
	if acc.Percentage != nil {
		change = fmt.Sprintf("%+.2f%%", *acc.Percentage)
	}
	return fmt.Sprintf("%s  %s  %s  %s", acc.ID, acc.Name, models.FormatAmount(acc.Amount), change)
}
