// Command-line interface for document link extraction and agent searches.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"doclinks/doclinks/agents/configs"
	"doclinks/doclinks/agents/core"
	"doclinks/doclinks/app"
	"doclinks/doclinks/config"
	"doclinks/doclinks/tools"
	"doclinks/doclinks/utils/color"
	"doclinks/doclinks/utils/jsonutils"
	"doclinks/doclinks/utils/logging"
	"doclinks/doclinks/utils/types"
)

type builder func(cfg config.Config) (*app.App, error)

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	build  builder

	logLevel string
	noColor  bool
	quiet    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, build: app.New}
	if err := c.rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.Error("error: "+err.Error()))
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "doclinks",
		Short:         "Find downloadable document links on websites",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.noColor {
				color.Disable()
			}
		},
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.PersistentFlags().StringVar(&c.logLevel, "log", "", "Log level: debug, info, warn, error (default from LOG_LEVEL)")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "Print only the JSON result")

	root.AddCommand(c.extractCmd(), c.findCmd(), c.mcpCmd())
	return root
}

// run loads config, starts logging and builds the app around fn.
func (c *cli) run(cmd *cobra.Command, console bool, fn func(ctx context.Context, a *app.App) error) error {
	cfg := config.LoadConfig()
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if err := logging.InitLogger(logging.Options{Dir: cfg.LogDir, Level: cfg.LogLevel, Console: console}); err != nil {
		return err
	}
	defer logging.Sync()

	a, err := c.build(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer a.Close(context.WithoutCancel(ctx))
	return fn(ctx, a)
}

func (c *cli) status(s string) {
	if !c.quiet {
		fmt.Fprintln(c.stderr, s)
	}
}

func (c *cli) printJSON(v any) {
	fmt.Fprintln(c.stdout, jsonutils.ToJSON(v))
}

func (c *cli) extractCmd() *cobra.Command {
	var fixed bool
	cmd := &cobra.Command{
		Use:   "extract [url]",
		Short: "Extract document download links from one page",
		Args: func(cmd *cobra.Command, args []string) error {
			if fixed {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, false, func(ctx context.Context, a *app.App) error {
				var res types.ExtractionResult
				if fixed {
					c.status(color.Heading("Extracting from " + a.Config.FixedSiteURL))
					res = a.Documents.ExtractFixedSite(ctx)
				} else {
					c.status(color.Heading("Extracting from " + args[0]))
					var err error
					if res, err = a.Documents.ExtractLinks(ctx, types.ExtractLinksRequest{URL: args[0]}); err != nil {
						return err
					}
				}
				c.printJSON(res)
				switch {
				case res.Failed():
					c.status(color.Missed(res.Failure.Message))
				case res.TotalLinksFound == 0:
					c.status(color.Warning(res.Message))
				default:
					c.status(color.Found(res.Message))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&fixed, "fixed", false, "Use the configured fixed site (FIXED_SITE_URL)")
	return cmd
}

func (c *cli) findCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Search a website for documents with the navigation agent",
	}
	cmd.AddCommand(
		c.findKindCmd("documents <website> <query>", "Find documents matching a query", configs.KindDocuments, 2),
		c.findKindCmd("pdf <website> <topic>", "Find PDF URLs about a topic", configs.KindPDF, 2),
		c.findKindCmd("news <website> <company>", "Find the latest news PDFs about a company", configs.KindNewsPDF, 2),
		c.findKindCmd("annual <website>", "Find annual report URLs", configs.KindAnnualReport, 1),
	)
	return cmd
}

func (c *cli) findKindCmd(use, short string, kind configs.TaskKind, nargs int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.AgentTaskRequest{Kind: string(kind), WebsiteURL: args[0]}
			if nargs > 1 {
				req.Query = strings.Join(args[1:], " ")
			}
			return c.run(cmd, false, func(ctx context.Context, a *app.App) error {
				c.status(color.Heading(fmt.Sprintf("Searching %s (%s)", req.WebsiteURL, kind)))
				res, err := c.search(ctx, a, req)
				if err != nil {
					return err
				}
				c.printJSON(res)
				if res.Success {
					c.status(color.Found(fmt.Sprintf("%d documents, %d tokens", len(res.Documents), res.TokenUsage.TotalTokens)))
				} else {
					c.status(color.Missed(res.SearchSummary))
				}
				return nil
			})
		},
	}
}

// search runs the agent and prints its steps as they happen.
func (c *cli) search(ctx context.Context, a *app.App, req types.AgentTaskRequest) (types.TaskResult, error) {
	events := make(chan core.StepEvent)
	type outcome struct {
		res types.TaskResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer close(events)
		res, err := a.Documents.Search(ctx, req, events)
		done <- outcome{res, err}
	}()
	for ev := range events {
		line := fmt.Sprintf("[%d/%d] %s", ev.Step, ev.MaxSteps, ev.Action)
		if ev.Error != "" {
			c.status(color.Warning(line + ": " + ev.Error))
			continue
		}
		c.status(color.Step(line) + " " + color.Info(ev.Thought))
	}
	out := <-done
	return out.res, out.err
}

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the document tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries protocol frames only
			return c.run(cmd, false, func(ctx context.Context, a *app.App) error {
				return tools.ServeStdio(ctx, tools.NewServer(a.Documents), c.stdin, c.stdout)
			})
		},
	}
}
