package handlers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pressroom/internal/core"
	"pressroom/internal/templates"
)

type selectResult struct {
	Category  string              `json:"category"`
	StableID  string              `json:"stableId"`
	Hash      int32               `json:"hash"`
	Preferred []core.TemplateType `json:"preferred"`
	Template  core.TemplateType   `json:"template"`
}

// NewSelectCmd creates the select command
func NewSelectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "select <category> <stable-id>",
		Short: "Show the deterministic template for a category and id",
		Long: `Show which template the deterministic path picks for a category and a
stable article id, along with the id hash and the category preference list.

Known categories: ` + strings.Join(templates.Categories(), ", ") + `.
Unknown categories use the default preference list.

Examples:
  pressroom select Technology abc123
  pressroom select Lifestyle post-42 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := selectResult{
				Category:  args[0],
				StableID:  args[1],
				Hash:      templates.Hash(args[1]),
				Preferred: templates.Preferred(args[0]),
				Template:  templates.Select(args[0], args[1]),
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}

			preferred := make([]string, len(result.Preferred))
			for i, t := range result.Preferred {
				preferred[i] = string(t)
			}
			lines := []string{
				field("Category", result.Category),
				field("Stable id", result.StableID),
				field("Hash", result.Hash),
				field("Preferred", strings.Join(preferred, ", ")),
				field("Template", result.Template),
			}
			fmt.Fprintln(cmd.OutOrStdout(), boxStyle.Render(strings.Join(lines, "\n")))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the selection as JSON")

	return cmd
}
