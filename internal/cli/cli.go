// Package cli implements the reviewctl subcommands on top of the catalog
// client and controllers.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"

	"github.com/alper4283/intern-project-product-review/internal/catalog"
	"github.com/alper4283/intern-project-product-review/internal/config"
	"github.com/alper4283/intern-project-product-review/internal/controller"
	"github.com/alper4283/intern-project-product-review/pkg/httpclient"
)

const usage = `Usage: reviewctl <command> [flags]

Commands:
  register   -username -email -password   create an account and store the token
  login      -username -password          authenticate and store the token
  logout                                  discard the stored token
  products   [-sort] [-category] [-search] [-pages]   list products
  show       <product-id>                 show a product and its reviews
  review     <product-id> -rating [-comment]          submit a review
`

// App wires configuration, transport, and the catalog client for the CLI.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	client *catalog.Client
	out    io.Writer
}

// NewApp builds the dependency graph from configuration. The token store is
// file-backed so authenticated calls survive process restarts.
func NewApp(cfg *config.Config, log *slog.Logger, out io.Writer) *App {
	tokens := httpclient.NewFileTokenStore(cfg.TokenFile)

	transportCfg := httpclient.DefaultConfig(cfg.BaseURL)
	transportCfg.Timeout = cfg.RequestTimeout()

	doer := httpclient.NewPooledDoer(transportCfg)
	if cfg.BreakerEnabled {
		doer = httpclient.NewBreakerDoer(doer, httpclient.DefaultBreakerConfig("backend"), log)
	}
	transport := httpclient.NewWithDoer(transportCfg, doer, tokens, log)

	return &App{
		cfg:    cfg,
		log:    log,
		client: catalog.New(transport, tokens, log),
		out:    out,
	}
}

// Run dispatches a subcommand. It returns a usage error for unknown input.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	case "products":
		return a.products(ctx, rest)
	case "show":
		return a.show(ctx, rest)
	case "review":
		return a.review(ctx, rest)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	username := fs.String("username", "", "account username")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.client.Register(ctx, catalog.RegisterRequest{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "registered as %s (%s)\n", resp.Username, resp.Role)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.client.Login(ctx, catalog.LoginRequest{
		Username: *username,
		Password: *password,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "logged in as %s\n", resp.Username)
	return nil
}

func (a *App) logout() error {
	if err := a.client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *App) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	sort := fs.String("sort", catalog.SortKey(catalog.FieldPrice, catalog.Asc), "sort directive, e.g. price,asc")
	category := fs.String("category", "", "client-side category filter")
	search := fs.String("search", "", "client-side name filter")
	pages := fs.Int("pages", 1, "number of pages to fetch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	list := controller.NewListController(a.client, a.log, a.cfg.PageSize, *sort)
	list.SetCategory(*category)
	list.SetSearch(*search)

	if err := list.LoadFirstPage(ctx); err != nil {
		return err
	}
	for i := 1; i < *pages; i++ {
		issued, err := list.LoadNextPage(ctx)
		if err != nil {
			return err
		}
		if !issued {
			break
		}
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tREVIEWS")
	for _, p := range list.VisibleItems() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.1f\t%d\n",
			p.ID, p.Name, p.Category, p.Price, p.AverageRating, p.ReviewCount)
	}
	return w.Flush()
}

func (a *App) show(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("show requires a product id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}

	detail := controller.NewDetailController(a.client, a.log, a.cfg.PageSize)
	if err := detail.Load(ctx, id); err != nil {
		return err
	}

	state := detail.Snapshot()
	p := state.Product
	fmt.Fprintf(a.out, "%s\n%s • $%.2f • %.1f stars (%d reviews)\n",
		p.Name, p.Category, p.Price, p.AverageRating, p.ReviewCount)
	if p.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", p.Description)
	}

	fmt.Fprintln(a.out, "\nReviews:")
	if len(state.Reviews) == 0 {
		fmt.Fprintln(a.out, "  (no reviews yet)")
	}
	for _, r := range state.Reviews {
		fmt.Fprintf(a.out, "  [%d/5] %s: %s (%s)\n", r.Rating, r.DisplayName(), r.Comment, r.CreatedAt)
	}
	return nil
}

func (a *App) review(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("review requires a product id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}

	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	rating := fs.Int("rating", 0, "rating from 1 to 5")
	comment := fs.String("comment", "", "optional review comment")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	detail := controller.NewDetailController(a.client, a.log, a.cfg.PageSize)
	if err := detail.Load(ctx, id); err != nil {
		return err
	}
	if err := detail.AddReview(ctx, *rating, *comment); err != nil {
		return err
	}

	state := detail.Snapshot()
	fmt.Fprintf(a.out, "review submitted; %s now at %.1f stars (%d reviews)\n",
		state.Product.Name, state.Product.AverageRating, state.Product.ReviewCount)
	return nil
}
