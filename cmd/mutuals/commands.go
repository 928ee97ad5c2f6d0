package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vytor/ghmutuals/internal/compare"
	"github.com/vytor/ghmutuals/internal/config"
	"github.com/vytor/ghmutuals/internal/github"
	"github.com/vytor/ghmutuals/internal/logger"
	"github.com/vytor/ghmutuals/internal/models"
	"github.com/vytor/ghmutuals/internal/services"
)

type rootOptions struct {
	token    string
	apiURL   string
	timeout  time.Duration
	logLevel string
}

func newRootCmd(cfg config.Config) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "mutuals",
		Short:         "Compare who a GitHub user follows with who follows them back",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetDefault(logger.New(
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithLevel(logger.ParseLevel(opts.logLevel)),
			))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.token, "token", cfg.GitHubToken, "GitHub token (defaults to GITHUB_TOKEN)")
	flags.StringVar(&opts.apiURL, "api-url", cfg.GitHubAPIURL, "GitHub API base URL")
	flags.DurationVar(&opts.timeout, "timeout", cfg.GitHubTimeout(), "per-request timeout")
	flags.StringVar(&opts.logLevel, "log-level", "WARN", "log level (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(newCompareCmd(opts), newRateLimitCmd(opts))
	return root
}

func (o *rootOptions) client() *github.Client {
	return github.New(github.WithBaseURL(o.apiURL), github.WithTimeout(o.timeout))
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "compare <username>",
		Short: "List mutuals and accounts that do not follow back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, err := services.NormalizeUsername(args[0])
			if err != nil {
				return err
			}

			result, err := compare.NewComparer(opts.client()).Compare(cmd.Context(), username, opts.token)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printComparison(cmd.OutOrStdout(), result, limit)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum accounts to print per list (0 prints all)")
	return cmd
}

func newRateLimitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rate-limit",
		Short: "Show the remaining GitHub API quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rl, err := opts.client().FetchRateLimit(cmd.Context(), opts.token)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d requests remaining, resets at %s\n",
				rl.Remaining, rl.Limit, rl.ResetAt.Local().Format(time.Kitchen))
			return nil
		},
	}
}

func printComparison(w io.Writer, result *models.FollowComparison, limit int) error {
	u := result.SearchedUser
	fmt.Fprintf(w, "%s (%s): %d followers, %d following, %d public repos\n\n",
		u.DisplayName(), u.Login, u.Followers, u.Following, u.PublicRepos)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	printList(tw, "Mutuals", result.Mutuals, limit)
	fmt.Fprintln(tw)
	printList(tw, "Not following back", result.NotFollowingBack, limit)
	return tw.Flush()
}

func printList(w io.Writer, title string, users []models.GitHubUser, limit int) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(users))
	shown := users
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, u := range shown {
		fmt.Fprintf(w, "  %s\t%s\n", u.Login, u.HTMLURL)
	}
	if rest := len(users) - len(shown); rest > 0 {
		fmt.Fprintf(w, "  … and %d more\n", rest)
	}
}
