package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiprox/internal/core/domain"
)

var (
	renderPrinted bool
	renderStrict  bool
	renderJSON    bool
)

var renderCmd = &cobra.Command{
	Use:   "render [title]",
	Short: "Render a wiki page for readers",
	Long: `Fetches a page from the origin wiki, resolves its primary sources and
prints the rewritten HTML body. Unpublished pages are refused unless the
deployment shows unpublished pages.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderPrinted, "printed", false, "render the print variant")
	renderCmd.Flags().BoolVar(&renderStrict, "strict", false, "fail when the catalog is unreachable")
	renderCmd.Flags().BoolVar(&renderJSON, "json", false, "output the document as JSON")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if publisher == nil {
		return notConfigured("publisher")
	}

	title := args[0]
	doc, err := publisher.Render(cmd.Context(), title, domain.RenderOptions{
		Printed:       renderPrinted,
		StrictSources: renderStrict,
	})
	switch {
	case errors.Is(err, domain.ErrUnpublished):
		return fmt.Errorf("page %q is not published", title)
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("page %q not found: %w", title, err)
	case err != nil:
		return fmt.Errorf("render failed: %w", err)
	}

	if renderJSON {
		return outputJSON(cmd, doc)
	}

	outputDocument(cmd, doc)
	return nil
}

func outputDocument(cmd *cobra.Command, doc *domain.PublishableDocument) {
	cmd.Printf("Title: %s (%s)\n", doc.Title, doc.Kind)
	if len(doc.Authors.Display) > 0 {
		cmd.Printf("Authors: %s\n", strings.Join(doc.Authors.Display, "; "))
	}
	if len(doc.Categories) > 0 {
		cmd.Printf("Categories: %s\n", strings.Join(doc.Categories, ", "))
	}
	if !doc.LastModified.IsZero() {
		cmd.Printf("Modified: %s\n", doc.LastModified.UTC().Format("2006-01-02 15:04:05"))
	}
	if len(doc.Sources) > 0 {
		cmd.Println("Sources:")
		for i := range doc.Sources {
			src := &doc.Sources[i]
			cmd.Printf("  %s [%s] %s\n", src.ID, src.Kind, src.Caption)
		}
	}
	cmd.Println()
	cmd.Println(doc.Body)
}
