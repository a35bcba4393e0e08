package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/repodash/pkg/filter"
	"github.com/glorpus-work/repodash/pkg/model"
	"github.com/glorpus-work/repodash/pkg/retrieval"
)

type searchOptions struct {
	sort      string
	page      int
	languages []string
	since     string
	where     string
}

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <category>",
		Short: "List repositories of a category",
		Long: `List one page of repositories tagged with the topics of a category.

Known categories map to their curated topics; any other name is used as a
single lowercase topic. The pre-generated snapshot is used while it is fresh,
otherwise the GitHub search API is queried.

Examples:
  repodash search AI
  repodash search "Web Dev" --sort trending --page 2
  repodash search DevOps --language go --since 30d --where 'stars > 1000'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.sort, "sort", "s", string(model.SortStars),
		"sort order (stars, forks, updated, newest, trending)")
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "page number")
	cmd.Flags().StringSliceVarP(&opts.languages, "language", "l", nil,
		"only show these languages (use \"other\" for none)")
	cmd.Flags().StringVar(&opts.since, "since", "", "only show repositories updated within a range (day, week, month, 7d, 48h)")
	cmd.Flags().StringVar(&opts.where, "where", "", "filter expression, e.g. 'stars > 100 && language == \"Go\"'")

	return cmd
}

type searchOutput struct {
	RequestID string             `json:"request_id"`
	Source    retrieval.Source   `json:"source"`
	Category  string             `json:"category"`
	Sort      model.SortKey      `json:"sort"`
	Page      int                `json:"page"`
	Records   []model.Repository `json:"records"`
}

func runSearch(cmd *cobra.Command, categoryName string, opts searchOptions) error {
	criteria, err := buildCriteria(opts.languages, opts.since, opts.where)
	if err != nil {
		return err
	}
	f, err := filter.New(criteria, nil)
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result, err := a.mediator.Search(ctx, categoryName, model.SortKey(opts.sort), opts.page)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	records, err := f.Apply(ctx, result.Records)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout(), a.registry, a.cfg.Settings.OutputFormat)
	if p.json {
		return p.printJSON(searchOutput{
			RequestID: result.RequestID,
			Source:    result.Source,
			Category:  result.Category,
			Sort:      result.Sort,
			Page:      result.Page,
			Records:   records,
		})
	}

	if len(records) == 0 {
		p.printf("No repositories found for '%s'\n", categoryName)
		return nil
	}

	offset := (result.Page - 1) * a.mediator.PerPage()
	if err := p.printRepos(records, offset); err != nil {
		return err
	}
	p.printf("\n%s\n", p.dim.Render(fmt.Sprintf("%d of %d on page %d from %s",
		len(records), len(result.Records), result.Page, result.Source)))
	return nil
}

func buildCriteria(languages []string, since, where string) (filter.Criteria, error) {
	c := filter.Criteria{Languages: languages, Where: where}
	if since != "" {
		d, err := filter.ParseRange(since)
		if err != nil {
			return c, err
		}
		c.Since = d
	}
	return c, nil
}
