package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/koyif/cardbank/internal/domain"
	"github.com/koyif/cardbank/internal/stats"
	"github.com/koyif/cardbank/internal/store"
	"github.com/koyif/cardbank/internal/workflow"
	"github.com/koyif/cardbank/pkg/logger"
)

// Run reads commands from stdin until EOF, quit, or context cancellation.
// It is the terminal stand-in for the original dashboards: role-gated
// commands instead of role-routed pages.
func (a *App) Run(ctx context.Context) error {
	fmt.Println("cardbank client - type 'help' for commands")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")

		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := a.dispatch(ctx, line); quit {
				return nil
			}
		}
	}
}

func (a *App) dispatch(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	command, args := fields[0], fields[1:]

	switch command {
	case "help":
		printHelp()
	case "login":
		a.login(ctx, args)
	case "logout":
		a.identity = nil
		fmt.Println("signed out")
	case "select":
		a.selectCard(ctx, args)
	case "balance":
		a.showBalance()
	case "history":
		a.showHistory()
	case "topup":
		a.submit(ctx, a.topup, args)
	case "withdraw":
		a.submit(ctx, a.withdraw, args)
	case "cancel":
		a.cancel(args)
	case "admin":
		a.showAdmin(ctx)
	case "quit", "exit":
		return true
	default:
		fmt.Printf("unknown command %q - type 'help'\n", command)
	}

	return false
}

func printHelp() {
	fmt.Println(`commands:
  login <username> <password>   sign in (demo: admin/admin123, customer/customer123)
  logout                        sign out
  select <cardNumber>           switch the active card
  balance                       show the current balance
  history                       show the card's transactions
  topup <amount> <pin>          submit a top-up
  withdraw <amount> <pin>       submit a withdrawal
  cancel topup|withdraw         close an open transaction form
  admin                         administrator overview
  quit                          exit`)
}

func (a *App) login(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: login <username> <password>")
		return
	}

	identity, err := a.gate.Authenticate(args[0], args[1])
	if err != nil {
		fmt.Println("Invalid username or password")
		return
	}

	a.identity = identity
	fmt.Printf("signed in as %s (%s)\n", identity.Username, identity.Role)

	// Customers land on their dashboard with the default card loaded.
	if identity.Role == domain.RoleCustomer && a.Config.DefaultCard != "" {
		a.selectCard(ctx, []string{a.Config.DefaultCard})
	}
}

// requireRole is the dashboard admission check. Denied callers are routed
// back to login rather than shown partial content.
func (a *App) requireRole(role domain.Role) bool {
	if a.identity == nil {
		fmt.Println("please sign in first")
		return false
	}

	if !a.gate.Authorize(a.identity, role) {
		fmt.Printf("access denied: sign in with a %s account\n", role)
		return false
	}

	return true
}

func (a *App) selectCard(ctx context.Context, args []string) {
	if !a.requireRole(domain.RoleCustomer) {
		return
	}

	if len(args) != 1 {
		fmt.Println("usage: select <cardNumber>")
		return
	}

	if err := a.store.Select(args[0]); err != nil {
		fmt.Println(err)
		return
	}

	if err := a.store.Refresh(a.requestContext(ctx)); err != nil {
		logger.Log.Warn("initial refresh failed", logger.Error(err))
		fmt.Println("Failed to load card data")
		return
	}

	a.showBalance()
}

func (a *App) showBalance() {
	if !a.requireRole(domain.RoleCustomer) {
		return
	}

	snapshot := a.store.Snapshot()
	if !snapshot.Loaded {
		fmt.Println("no card data loaded - select a card first")
		return
	}

	printStaleWarning(snapshot)
	fmt.Printf("card %s balance: $%s\n", snapshot.Account.CardNumber, snapshot.Account.Balance.StringFixed(2))
}

func (a *App) showHistory() {
	if !a.requireRole(domain.RoleCustomer) {
		return
	}

	snapshot := a.store.Snapshot()
	if !snapshot.Loaded {
		fmt.Println("no card data loaded - select a card first")
		return
	}

	printStaleWarning(snapshot)
	if len(snapshot.History) == 0 {
		fmt.Println("no transactions")
		return
	}

	for _, t := range snapshot.History {
		balanceAfter := "-"
		if t.BalanceAfter != nil {
			balanceAfter = "$" + t.BalanceAfter.StringFixed(2)
		}
		fmt.Printf("%6d  %-8s  $%10s  %-8s  %-26s  %10s  %s\n",
			t.ID, t.Kind, t.Amount.StringFixed(2), t.Status, t.Message, balanceAfter,
			t.Timestamp.Format("2006-01-02 15:04:05"))
	}
}

// submit opens the workflow for the selected card and runs the submission
// in the background, like the SPA's non-blocking modal: other commands stay
// usable while the call is in flight.
func (a *App) submit(ctx context.Context, w *workflow.Workflow, args []string) {
	if !a.requireRole(domain.RoleCustomer) {
		return
	}

	snapshot := a.store.Snapshot()
	if !snapshot.Loaded {
		fmt.Println("no card data loaded - select a card first")
		return
	}

	if len(args) != 2 {
		fmt.Println("usage: topup|withdraw <amount> <pin>")
		return
	}

	if err := w.Open(snapshot.Account.CardNumber); err != nil {
		fmt.Println(err)
		return
	}

	amount, pin := args[0], args[1]
	requestCtx := a.requestContext(ctx)

	go func() {
		if err := w.Submit(requestCtx, amount, pin); err != nil {
			message := w.Failure()
			if message == "" {
				message = err.Error()
			}
			fmt.Printf("\n%s failed: %s\n> ", w.Kind(), message)
			return
		}

		refreshed := a.store.Snapshot()
		fmt.Printf("\n%s successful! balance: $%s\n> ",
			w.Kind(), refreshed.Account.Balance.StringFixed(2))
	}()
}

func (a *App) cancel(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: cancel topup|withdraw")
		return
	}

	switch args[0] {
	case "topup":
		a.topup.Cancel()
	case "withdraw":
		a.withdraw.Cancel()
	default:
		fmt.Println("usage: cancel topup|withdraw")
		return
	}

	fmt.Println("cancelled")
}

// showAdmin fetches both collections concurrently, the way the original
// dashboard did, and prints the derived statistics.
func (a *App) showAdmin(ctx context.Context) {
	if !a.requireRole(domain.RoleAdmin) {
		return
	}

	requestCtx := a.requestContext(ctx)

	var (
		wg           sync.WaitGroup
		transactions []domain.TransactionRecord
		cards        []domain.Card
		txErr, cdErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		transactions, txErr = a.client.AdminTransactions(requestCtx)
	}()
	go func() {
		defer wg.Done()
		cards, cdErr = a.client.AdminCards(requestCtx)
	}()
	wg.Wait()

	if txErr != nil || cdErr != nil {
		logger.Log.Error("error loading admin data", logger.Error(txErr), logger.Error(cdErr))
		fmt.Println("Failed to load data")
		return
	}

	s := stats.Summarize(transactions, cards)
	fmt.Printf("transactions: %d total, %d successful\n", s.TotalTransactions, s.Successful)
	fmt.Printf("top-ups:      %d total, %d successful\n", s.Topups, s.SuccessfulTopups)
	fmt.Printf("withdrawals:  %d total, %d successful\n", s.Withdrawals, s.SuccessfulWithdrawals)
	fmt.Printf("cards:        %d, combined balance $%s\n", s.TotalCards, s.TotalBalance.StringFixed(2))

	for _, t := range transactions {
		fmt.Printf("%6d  %-16s  %-8s  $%10s  %-8s  %s\n",
			t.ID, t.CardNumber, t.Kind, t.Amount.StringFixed(2), t.Status, t.Message)
	}
}

func printStaleWarning(snapshot store.Snapshot) {
	if snapshot.Stale {
		fmt.Println("warning: last refresh failed, data may be outdated")
	}
}
