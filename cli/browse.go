package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnflow/catalog/internal/view"
	"github.com/learnflow/catalog/model"
)

func browseCmd() *cobra.Command {
	var (
		file            string
		term            string
		fields          string
		filters         []string
		sortKey         string
		ratingField     string
		createdAtField  string
		popularityField string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Derive a filtered, sorted view over a JSON array of records",
		Long: `Reads a JSON array of records and prints the derived view as JSON.
Nothing is stored; this runs the same filter and sort rules the API uses.`,
		Args: cobra.NoArgs,
		Example: `  $ catalog browse --file courses.json --q java --fields title,description,tags
  $ catalog browse --file resources.json --filter type=video --sort popular --popularity-field view_count`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := readRecords(file)
			if err != nil {
				return err
			}

			exact, err := parseFilterFlags(filters)
			if err != nil {
				return err
			}

			key := view.ParseSortKey(sortKey)
			if !key.Known() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: unknown sort key %q, keeping filtered order\n", sortKey)
			}

			derived := view.Derive(records, view.Query{
				Term:    term,
				Fields:  view.SplitFields(fields),
				Filters: exact,
				Sort:    key,
				Ranking: view.Ranking{
					RatingField:     ratingField,
					CreatedAtField:  createdAtField,
					PopularityField: popularityField,
				},
			})

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(derived)
		},
	}

	defaults := view.DefaultRanking()
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file holding an array of records (required)")
	cmd.Flags().StringVarP(&term, "q", "q", "", "Free-text term")
	cmd.Flags().StringVar(&fields, "fields", "", "Comma-separated fields the term is matched against")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Exact filter as field=value, repeatable")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", "", "Sort key: none, rating, newest, popular")
	cmd.Flags().StringVar(&ratingField, "rating-field", defaults.RatingField, "Field read by the rating sort")
	cmd.Flags().StringVar(&createdAtField, "created-at-field", defaults.CreatedAtField, "Field read by the newest sort")
	cmd.Flags().StringVar(&popularityField, "popularity-field", defaults.PopularityField, "Field read by the popular sort")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readRecords(path string) ([]model.Record, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read records file %s: %w", path, err)
	}
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("records file %s must hold a JSON array of objects: %w", path, err)
	}
	return records, nil
}

func parseFilterFlags(raw []string) (map[string]string, error) {
	filters := make(map[string]string, len(raw))
	for _, f := range raw {
		field, value, ok := strings.Cut(f, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --filter %q, expected field=value", f)
		}
		filters[field] = value
	}
	return filters, nil
}
