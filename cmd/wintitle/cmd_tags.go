package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"wintitle/internal/tags"
)

var tagsMarkdown bool

// tagsCmd lists the supported tags
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tags usable in patterns",
	Args:  cobra.NoArgs,
	RunE:  runTags,
}

func init() {
	tagsCmd.Flags().BoolVar(&tagsMarkdown, "markdown", false, "Render the list as a markdown table")
}

// tagsMarkdownTable builds the markdown reference for the registry.
func tagsMarkdownTable(reg *tags.Registry) string {
	var sb strings.Builder
	sb.WriteString("# Pattern tags\n\n")
	sb.WriteString("Write tags as `[tagName]`. Unknown tags are left as written.\n\n")
	sb.WriteString("| Tag | Description |\n|---|---|\n")
	for _, info := range reg.Tags() {
		fmt.Fprintf(&sb, "| `[%s]` | %s |\n", info.Name, strings.ReplaceAll(info.Description, "|", "\\|"))
	}
	return sb.String()
}

func runTags(cmd *cobra.Command, args []string) error {
	reg := tags.DefaultRegistry()
	out := cmd.OutOrStdout()

	if tagsMarkdown {
		md := tagsMarkdownTable(reg)
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err != nil {
			// Plain markdown is still readable
			fmt.Fprint(out, md)
			return nil
		}
		rendered, err := renderer.Render(md)
		if err != nil {
			fmt.Fprint(out, md)
			return nil
		}
		fmt.Fprint(out, rendered)
		return nil
	}

	fmt.Fprintln(out, headerStyle.Render("Pattern tags"))
	for _, info := range reg.Tags() {
		fmt.Fprintln(out, tagStyle.Render("["+info.Name+"]")+info.Description)
	}
	return nil
}
