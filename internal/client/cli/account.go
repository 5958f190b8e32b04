package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/avoronov/periodvault/internal/client/models"
)

// selectedPeriodID returns the id of the currently selected period.
func (a *App) selectedPeriodID(ctx context.Context) (string, error) {
	p, err := a.state.Selected(ctx)
	if err != nil {
		printlnFn("Select a period first ('select')")
		return "", err
	}
	return p.ID, nil
}

// AddAccount adds a savings account to the selected period.
func (a *App) AddAccount(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	periodID, err := a.selectedPeriodID(ctx)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter account name", os.Stdout)
	if err != nil {
		return err
	}

	amountStr, err := getSimpleText(a.reader, "Enter amount", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := models.ParseAmount(amountStr)
	if err != nil {
		printlnFn("Invalid amount:", amountStr)
		return err
	}

	p, err := a.state.AddAccount(ctx, periodID, name, amount)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Added. Period now has %d accounts.", len(p.Accounts)))
	return nil
}

// RemoveAccount removes an account from the selected period by id.
func (a *App) RemoveAccount(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	periodID, err := a.selectedPeriodID(ctx)
	if err != nil {
		return err
	}

	accountID, err := getSimpleText(a.reader, "Enter account id", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.state.RemoveAccount(ctx, periodID, accountID); err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn("Removed")
	return nil
}

// SetAmount updates an account's amount in the selected period and prints
// the resulting change against the account's baseline, if it has one.
func (a *App) SetAmount(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	periodID, err := a.selectedPeriodID(ctx)
	if err != nil {
		return err
	}

	accountID, err := getSimpleText(a.reader, "Enter account id", os.Stdout)
	if err != nil {
		return err
	}

	amountStr, err := getSimpleText(a.reader, "Enter new amount", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := models.ParseAmount(amountStr)
	if err != nil {
		printlnFn("Invalid amount:", amountStr)
		return err
	}

	p, err := a.state.UpdateAccountAmount(ctx, periodID, accountID, amount)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if n := p.FindAccount(accountID); n >= 0 {
		printlnFn("Updated: " + formatAccount(p.Accounts[n]))
	}
	return nil
}
