package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"budget/internal/cli"
	"budget/internal/client"
	"budget/internal/config"
	"budget/internal/core"
	applog "budget/internal/log"
)

const usage = `usage: budget-cli [-api URL] <command> [flags]

commands:
  list                     show transactions, newest first
  summary                  show income, expense and balance
  add -text T -amount A -category C [-date YYYY-MM-DD] [-income]
  edit <id> [-text T] [-amount A] [-category C] [-date D] [-income|-expense]
  delete <id> [-yes]
`

func main() {
	_ = cli.LoadEnvFile()
	cfg := config.Load()

	cfgLog := applog.DefaultConfig()
	cfgLog.Level = applog.ParseLevel(cfg.LogLevel)
	cfgLog.Component = applog.ComponentClient
	cfgLog.Output = os.Stderr
	logger := applog.New(cfgLog)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	if err := run(ctx, os.Args[1:], cfg.APIURL, os.Stdin, os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	api    *client.API
	mirror *client.Mirror
	in     *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

func run(ctx context.Context, args []string, defaultAPI string, stdin io.Reader, stdout io.Writer, logger *applog.Logger) error {
	global := flag.NewFlagSet("budget-cli", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	apiURL := global.String("api", defaultAPI, "base URL of the budget server")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if global.NArg() == 0 {
		return errors.New(strings.TrimSpace(usage))
	}
	if err := config.ValidateAPIURL(*apiURL); err != nil {
		return err
	}

	api := client.NewAPI(*apiURL, nil)
	a := &app{
		api:    api,
		mirror: client.NewMirror(api, logger),
		in:     bufio.NewReader(stdin),
		out:    stdout,
		now:    time.Now,
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "list":
		return a.list(ctx)
	case "summary":
		return a.summary(ctx)
	case "add":
		return a.add(ctx, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func (a *app) list(ctx context.Context) error {
	if err := a.mirror.Refresh(ctx); err != nil {
		return err
	}
	return client.RenderList(a.out, a.mirror.Items())
}

func (a *app) summary(ctx context.Context) error {
	s, err := a.api.Summary(ctx)
	if err != nil {
		return err
	}
	return client.RenderSummary(a.out, s)
}

// formFlags holds the form fields a subcommand accepts as flags.
type formFlags struct {
	text, amount, category, date *string
	income, expense              *bool
}

func bindForm(fs *flag.FlagSet) formFlags {
	return formFlags{
		text:     fs.String("text", "", "description"),
		amount:   fs.String("amount", "", "amount, unsigned"),
		category: fs.String("category", "", "category"),
		date:     fs.String("date", "", "date as YYYY-MM-DD"),
		income:   fs.Bool("income", false, "record as income"),
		expense:  fs.Bool("expense", false, "record as expense"),
	}
}

// apply overwrites the fields of f that were set on the command line.
func (ff formFlags) apply(fs *flag.FlagSet, f client.Form) (client.Form, error) {
	if *ff.income && *ff.expense {
		return f, errors.New("-income and -expense are mutually exclusive")
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "text":
			f.Text = *ff.text
		case "amount":
			f.Amount = *ff.amount
		case "category":
			f.Category = *ff.category
		case "date":
			f.Date = *ff.date
		case "income":
			if *ff.income {
				f.Kind = client.KindIncome
			}
		case "expense":
			if *ff.expense {
				f.Kind = client.KindExpense
			}
		}
	})
	return f, nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	ff := bindForm(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	form, err := ff.apply(fs, client.NewForm(a.now()))
	if err != nil {
		return err
	}
	created, err := a.mirror.Submit(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added transaction %d\n", created.ID)
	return client.RenderList(a.out, a.mirror.Items())
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	ff := bindForm(fs)
	id, err := parseIDArgs(fs, args)
	if err != nil {
		return err
	}

	if err := a.mirror.Refresh(ctx); err != nil {
		return err
	}
	form, err := a.mirror.Edit(id)
	if err != nil {
		return err
	}
	if form, err = ff.apply(fs, form); err != nil {
		a.mirror.CancelEdit()
		return err
	}
	updated, err := a.mirror.Submit(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated transaction %d\n", updated.ID)
	return client.RenderList(a.out, a.mirror.Items())
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	id, err := parseIDArgs(fs, args)
	if err != nil {
		return err
	}

	if err := a.mirror.Refresh(ctx); err != nil {
		return err
	}
	deleted, err := a.mirror.Delete(ctx, id, func(t core.Transaction) bool {
		return *yes || a.confirm(t)
	})
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	fmt.Fprintf(a.out, "Deleted transaction %d\n", id)
	return nil
}

func (a *app) confirm(t core.Transaction) bool {
	label := strconv.FormatInt(t.ID, 10)
	if t.Text != "" {
		label = fmt.Sprintf("%d (%s)", t.ID, t.Text)
	}
	fmt.Fprintf(a.out, "Are you sure you want to delete transaction %s? [y/N] ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// parseIDArgs accepts the id before or after the flags.
func parseIDArgs(fs *flag.FlagSet, args []string) (int64, error) {
	var raw string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		raw, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if raw == "" {
		raw = fs.Arg(0)
	}
	if raw == "" {
		return 0, fmt.Errorf("%s: missing transaction id", fs.Name())
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%s: invalid transaction id %q", fs.Name(), raw)
	}
	return id, nil
}
