package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wintitle/internal/titleparse"
)

var (
	parseHostName string
	parseMarker   string
	parseJSON     bool
)

// parseCmd parses a rendered title
var parseCmd = &cobra.Command{
	Use:   "parse [title]",
	Short: "Parse a rendered title into host, workspace and state",
	Long: `Recovers the host display name, workspace name and state suffix from a title
produced by a render, the same way sibling instances are compared.

Example:
  wintitle parse "MyApp (Debugging) - Microsoft Visual Studio *"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseHostName, "host", "Microsoft Visual Studio", "Host application base name")
	parseCmd.Flags().StringVar(&parseMarker, "marker", "", "Appended marker (default: from configuration)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print JSON")
}

// parsedTitle is the result of parsing one title.
type parsedTitle struct {
	Title     string `json:"title"`
	Host      string `json:"host,omitempty"`
	Elevation string `json:"elevation,omitempty"`
	Workspace string `json:"workspace,omitempty"`
	State     string `json:"state,omitempty"`
}

func parseTitle(title, hostName, marker string) (parsedTitle, map[string]bool) {
	p := titleparse.For(hostName, marker)
	res := parsedTitle{Title: title}
	found := map[string]bool{}

	var ok bool
	res.Host, ok = p.HostName(title)
	found["host"] = ok
	if ok {
		res.Elevation = titleparse.ElevationSuffix(res.Host)
	}
	res.Workspace, found["workspace"] = p.WorkspaceName(title)
	res.State, found["state"] = p.State(title)
	return res, found
}

func runParse(cmd *cobra.Command, args []string) error {
	marker := parseMarker
	if !cmd.Flags().Changed("marker") {
		src, err := loadConfig()
		if err != nil {
			return err
		}
		marker = src.Current().AppendedMarker
	}

	title := strings.Join(args, " ")
	res, found := parseTitle(title, parseHostName, marker)

	out := cmd.OutOrStdout()
	if parseJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	lines := []string{
		headerStyle.Render(title),
		"",
		field("host", res.Host, found["host"]),
		field("elevation", res.Elevation, res.Elevation != ""),
		field("workspace", res.Workspace, found["workspace"]),
		field("state", res.State, found["state"]),
	}
	fmt.Fprintln(out, boxStyle.Render(strings.Join(lines, "\n")))
	return nil
}
