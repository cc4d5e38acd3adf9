// Package cli is the interactive text front end: a numbered menu that reads
// answers line by line and renders accounts, receipts and errors.
package cli

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mibank/internal/errors"
	"mibank/internal/service"
)

const rule = "================================================"

type App struct {
	name    string
	founded int
	ledger  *service.LedgerService
	in      *bufio.Scanner
	out     io.Writer

	title *color.Color
	ok    *color.Color
	fail  *color.Color
}

func New(name string, founded int, ledger *service.LedgerService, in io.Reader, out io.Writer) *App {
	return &App{
		name:    name,
		founded: founded,
		ledger:  ledger,
		in:      bufio.NewScanner(in),
		out:     out,
		title:   color.New(color.FgCyan, color.Bold),
		ok:      color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
	}
}

var errInputClosed = stderrors.New("input closed")

// Run shows the menu until the user exits or input ends.
func (a *App) Run() error {
	banner := strings.Repeat("~", 24)
	a.title.Fprintf(a.out, "%s\n Welcome to %s (Founded %d)\n%s\n", banner, a.name, a.founded, banner)

	for {
		option, err := a.prompt("1. Create an Account\n2. Transfer Money\n3. View Balance\n4. Exit\nChoose an option (1-4): ")
		if err != nil {
			return a.closed(err)
		}

		switch option {
		case "1":
			err = a.register()
		case "2":
			err = a.transfer()
		case "3":
			err = a.balance()
		case "4":
			fmt.Fprintf(a.out, "Exiting... Thank you for banking with us!\n")
			return nil
		default:
			a.fail.Fprintf(a.out, "Invalid option. Please choose a number between 1 and 4.\n")
		}
		if err != nil {
			return a.closed(err)
		}
	}
}

func (a *App) register() error {
	name, err := a.prompt("Enter your name: ")
	if err != nil {
		return err
	}
	email, err := a.prompt("Enter your email: ")
	if err != nil {
		return err
	}

	account, err := a.ledger.RegisterAccount(name, email)
	if err != nil {
		a.report(err)
		return nil
	}
	a.success("Account created successfully! Your account number is %d", account.ID)
	return nil
}

func (a *App) transfer() error {
	fmt.Fprintf(a.out, "Intra-%s Transfer\n", a.name)

	senderID, ok, err := a.promptAccount("Enter your account number: ", "Sender")
	if err != nil || !ok {
		return err
	}
	receiverID, ok, err := a.promptAccount("Enter receiver account number: ", "Receiver")
	if err != nil || !ok {
		return err
	}

	raw, err := a.prompt("Enter amount to transfer: ")
	if err != nil {
		return err
	}
	amount, err := service.ParseAmount(raw)
	if err != nil {
		a.report(err)
		return nil
	}

	receipt, err := a.ledger.Transfer(&service.TransferRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
	})
	if err != nil {
		a.report(err)
		return nil
	}
	a.success("%s has been transferred from %d to %d. Your new balance is %s (ref %s)",
		receipt.Amount, receipt.SenderID, receipt.ReceiverID, receipt.SenderBalance.StringFixed(2), receipt.TransactionID)
	return nil
}

func (a *App) balance() error {
	id, ok, err := a.promptAccount("Enter your account number: ", "Account")
	if err != nil || !ok {
		return err
	}
	account, err := a.ledger.GetAccount(id)
	if err != nil {
		a.report(err)
		return nil
	}
	a.success("%s, your balance is %s", account.OwnerName, account.Balance.StringFixed(2))
	return nil
}

// promptAccount asks for an account number and checks that it exists. ok is
// false when the problem has already been reported to the user.
func (a *App) promptAccount(question, role string) (int64, bool, error) {
	raw, err := a.prompt(question)
	if err != nil {
		return 0, false, err
	}
	id, err := service.ParseAccountID(raw)
	if err != nil {
		a.report(err)
		return 0, false, nil
	}
	if _, err := a.ledger.GetAccount(id); err != nil {
		if stderrors.Is(err, errors.ErrAccountNotFound) {
			a.boxed(a.fail, "%s account not found.", role)
			return 0, false, nil
		}
		a.report(err)
		return 0, false, nil
	}
	return id, true, nil
}

func (a *App) prompt(question string) (string, error) {
	fmt.Fprint(a.out, question)
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(a.in.Text()), nil
}

func (a *App) report(err error) {
	appErr := errors.AsAppError(err)
	if appErr.Code == errors.IOError {
		a.boxed(a.fail, "%s. Your request was not saved; please try again later.", appErr.Message)
		return
	}
	a.boxed(a.fail, "%s.", appErr.Message)
}

func (a *App) success(format string, args ...interface{}) {
	a.boxed(a.ok, format, args...)
}

func (a *App) boxed(c *color.Color, format string, args ...interface{}) {
	fmt.Fprintln(a.out, rule)
	c.Fprintf(a.out, format+"\n", args...)
	fmt.Fprintln(a.out, rule)
}

func (a *App) closed(err error) error {
	if stderrors.Is(err, errInputClosed) {
		fmt.Fprintln(a.out)
		return nil
	}
	return err
}
