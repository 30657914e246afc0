package commands

import (
	"fmt"
	"strings"

	"dailybriefing/internal/preflight"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and local resources",
	Long:  `Run the pre-flight checks (settings, prompt template, narration phrases, schedule, mail transport) without contacting any external service.`,
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	results := preflight.NewChecker(cfg).RunAll()
	fmt.Fprintln(cmd.OutOrStdout(), renderCheckResults(results))

	if preflight.HasFailures(results) {
		return fmt.Errorf("pre-flight checks failed")
	}
	return nil
}

func renderCheckResults(results []preflight.CheckResult) string {
	var lines []string
	for _, r := range results {
		var badge string
		switch r.Status {
		case preflight.StatusPass:
			badge = passStyle.Render("✓ pass")
		case preflight.StatusWarning:
			badge = warnStyle.Render("! warn")
		default:
			badge = failStyle.Render("✗ fail")
		}

		line := fmt.Sprintf("%s  %-18s %s", badge, r.Name, r.Message)
		if r.Error != nil {
			line += "\n" + dimStyle.Render("          "+r.Error.Error())
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Daily Briefing pre-flight"),
		boxStyle.Render(strings.Join(lines, "\n")),
	)
}
