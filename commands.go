package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"discussionblog/core"
	"discussionblog/entities"
	"discussionblog/internal/blog"
	"discussionblog/internal/utils"
)

const previewLength = 120

var discussionsCmd = &cobra.Command{
	Use:     "discussions",
	Aliases: []string{"fetch"},
	Short:   "List every discussion of a category, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Query.Category == "" {
			return fmt.Errorf("a category is required (--category or query.category)")
		}

		service, api, cleanup, err := newService(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		discussions, err := service.GetDiscussionsByCategory(cmd.Context(), blog.Query{
			CategoryName: cfg.Query.Category,
			PageSize:     cfg.Query.PageSize,
			IncludeBody:  cfg.Query.IncludeBody,
		})
		if err != nil {
			return err
		}

		logRemainingQuota(cmd, api)

		format, _ := cmd.Flags().GetString("format")
		return writeDiscussions(cmd.OutOrStdout(), format, discussions)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the repository's discussion categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, cleanup, err := newService(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		categories, err := service.Categories(cmd.Context())
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		return writeCategories(cmd.OutOrStdout(), format, categories)
	},
}

var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Show the token's remaining GitHub API quota",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, api, cleanup, err := newService(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		limits, err := api.RateLimit(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if limits.Core != nil {
			fmt.Fprintf(out, "core     %d/%d  resets %s\n", limits.Core.Remaining, limits.Core.Limit, limits.Core.Reset.Time.Format("15:04:05"))
		}
		if limits.GraphQL != nil {
			fmt.Fprintf(out, "graphql  %d/%d  resets %s\n", limits.GraphQL.Remaining, limits.GraphQL.Limit, limits.GraphQL.Reset.Time.Format("15:04:05"))
		}
		return nil
	},
}

func init() {
	discussionsCmd.Flags().String("category", "", "discussion category name (exact match)")
	discussionsCmd.Flags().Int("page-size", 100, "discussions per request, at most 100")
	discussionsCmd.Flags().Bool("body", false, "include the markdown body of every discussion")
	discussionsCmd.Flags().String("format", "text", "output format: text or json")

	categoriesCmd.Flags().String("format", "text", "output format: text or json")

	rootCmd.AddCommand(discussionsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(rateLimitCmd)
}

// logRemainingQuota costs one REST call, so it only runs at debug level.
func logRemainingQuota(cmd *cobra.Command, api *core.API) {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}

	limits, err := api.RateLimit(cmd.Context())
	if err != nil {
		log.Debug().Err(err).Msg("Could not read rate limit")
		return
	}
	if limits.GraphQL != nil {
		log.Debug().
			Int("remaining", limits.GraphQL.Remaining).
			Int("limit", limits.GraphQL.Limit).
			Msg("GraphQL quota")
	}
}

func writeDiscussions(w io.Writer, format string, discussions []entities.Discussion) error {
	if format == "json" {
		return writeJSON(w, discussions)
	}

	for _, d := range discussions {
		line := fmt.Sprintf("#%-5d %s  %s", d.Number, utils.FormatDate(d.CreatedAt), d.Title)
		if names := d.LabelNames(); len(names) > 0 {
			line += "  [" + strings.Join(names, ", ") + "]"
		}
		fmt.Fprintln(w, line)

		if d.Body != nil {
			fmt.Fprintf(w, "       %s\n", utils.PreviewContent(*d.Body, previewLength))
		}
	}
	return nil
}

func writeCategories(w io.Writer, format string, categories []entities.Category) error {
	if format == "json" {
		return writeJSON(w, categories)
	}

	for _, c := range categories {
		fmt.Fprintf(w, "%-24s %s\n", c.Name, c.ID)
	}
	return nil
}

func writeJSON(w io.Writer, data interface{}) error {
	out, err := utils.ToJSON(data)
	if err != nil {
		return fmt.Errorf("failed to convert to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
