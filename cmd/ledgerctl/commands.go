package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"github.com/mmynk/gpbank/internal/ledger"
	"github.com/mmynk/gpbank/internal/views"
)

const defaultLimit = 10

// run opens the engine and hands it to fn, turning errors into an exit status.
func run(ctx context.Context, fn func(*ledger.Engine) error) subcommands.ExitStatus {
	e, err := openEngine(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := fn(e); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func oneArg(f *flag.FlagSet, what string) (string, bool) {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "expected exactly one %s\n", what)
		return "", false
	}
	return f.Arg(0), true
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
}

func formatTime(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}

type balanceCmd struct{}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "print the balance of an account" }
func (*balanceCmd) Usage() string {
	return `ledgerctl balance <name>
`
}
func (*balanceCmd) SetFlags(*flag.FlagSet) {}

func (*balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name, ok := oneArg(f, "account name")
	if !ok {
		return subcommands.ExitUsageError
	}
	return run(ctx, func(e *ledger.Engine) error {
		fmt.Fprintf(stdout, "%s: %s GP\n", name, humanize.Comma(e.Balance(name)))
		return nil
	})
}

type historyCmd struct {
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list the most recent transactions of an account" }
func (*historyCmd) Usage() string {
	return `ledgerctl history [-n <limit>] <name>
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", defaultLimit, "Number of transactions to show, 0 for all.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name, ok := oneArg(f, "account name")
	if !ok {
		return subcommands.ExitUsageError
	}
	return run(ctx, func(e *ledger.Engine) error {
		txs, err := e.History(name, c.limit)
		if errors.Is(err, ledger.ErrNoTransactions) {
			fmt.Fprintf(stdout, "%s has no transactions\n", name)
			return nil
		}
		if err != nil {
			return err
		}
		w := newTable()
		fmt.Fprintln(w, "TIME\tTYPE\tAMOUNT\tACTOR\tNOTE")
		for _, tx := range txs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", formatTime(tx.Timestamp), tx.Type, humanize.Comma(tx.Amount), tx.ActorID, tx.Note)
		}
		return w.Flush()
	})
}

type topCmd struct {
	limit int
}

func (*topCmd) Name() string     { return "top" }
func (*topCmd) Synopsis() string { return "rank accounts by balance" }
func (*topCmd) Usage() string {
	return `ledgerctl top [-n <limit>]
`
}

func (c *topCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", defaultLimit, "Number of accounts to show, 0 for all.")
}

func (c *topCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(e *ledger.Engine) error {
		return printRanking(e.TopBalances(c.limit), "ACCOUNT", "BALANCE")
	})
}

type debtorsCmd struct {
	limit int
}

func (*debtorsCmd) Name() string     { return "debtors" }
func (*debtorsCmd) Synopsis() string { return "rank borrowers by total open debt" }
func (*debtorsCmd) Usage() string {
	return `ledgerctl debtors [-n <limit>]
`
}

func (c *debtorsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", defaultLimit, "Number of borrowers to show, 0 for all.")
}

func (c *debtorsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(e *ledger.Engine) error {
		return printRanking(e.TopDebtors(c.limit), "BORROWER", "OWED")
	})
}

func printRanking(rows []views.Ranked, nameHeader, amountHeader string) error {
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "nothing to show")
		return nil
	}
	w := newTable()
	fmt.Fprintf(w, "#\t%s\t%s\n", nameHeader, amountHeader)
	for i, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", humanize.Ordinal(i+1), row.Name, humanize.Comma(row.Amount))
	}
	return w.Flush()
}

type debtsCmd struct{}

func (*debtsCmd) Name() string     { return "debts" }
func (*debtsCmd) Synopsis() string { return "list the open loans a borrower owes" }
func (*debtsCmd) Usage() string {
	return `ledgerctl debts <borrower>
`
}
func (*debtsCmd) SetFlags(*flag.FlagSet) {}

func (*debtsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name, ok := oneArg(f, "borrower name")
	if !ok {
		return subcommands.ExitUsageError
	}
	return run(ctx, func(e *ledger.Engine) error {
		entries := e.DebtsOfBorrower(name)
		if len(entries) == 0 {
			fmt.Fprintf(stdout, "%s owes nothing\n", name)
			return nil
		}
		w := newTable()
		fmt.Fprintln(w, "LOAN\tLENDER\tBALANCE")
		for _, d := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.LoanID, d.LenderName, humanize.Comma(d.Balance))
		}
		return w.Flush()
	})
}

type loansCmd struct{}

func (*loansCmd) Name() string     { return "loans" }
func (*loansCmd) Synopsis() string { return "list the open loans owed to a lender" }
func (*loansCmd) Usage() string {
	return `ledgerctl loans <lender>
`
}
func (*loansCmd) SetFlags(*flag.FlagSet) {}

func (*loansCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name, ok := oneArg(f, "lender name")
	if !ok {
		return subcommands.ExitUsageError
	}
	return run(ctx, func(e *ledger.Engine) error {
		entries := e.LoansOfLender(name)
		if len(entries) == 0 {
			fmt.Fprintf(stdout, "nobody owes %s\n", name)
			return nil
		}
		w := newTable()
		fmt.Fprintln(w, "LOAN\tBORROWER\tBALANCE")
		for _, c := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.LoanID, c.BorrowerName, humanize.Comma(c.Balance))
		}
		return w.Flush()
	})
}
