package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rpggio/worklog/internal/domain/rule"
	"github.com/rpggio/worklog/internal/output"
)

func NewRulesCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage meeting recognition rules",
	}

	cmd.AddCommand(newRulesListCmd(deps))
	cmd.AddCommand(newRulesAddCmd(deps))
	cmd.AddCommand(newRulesRemoveCmd(deps))
	cmd.AddCommand(newRulesImportCmd(deps))

	return cmd
}

func newRulesListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := deps.App.Rules.List(cmd.Context())
			if err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).Rules(rules)
			return nil
		},
	}
}

type patternFlags struct {
	value         string
	mode          string
	caseSensitive bool
}

func (p *patternFlags) register(fs *pflag.FlagSet, name, subject string) {
	fs.StringVar(&p.value, name, "", subject+" pattern")
	fs.StringVar(&p.mode, name+"-mode", string(rule.MatchContains), subject+" match mode: exact, contains, starts_with, regex or wildcard")
	fs.BoolVar(&p.caseSensitive, name+"-case-sensitive", false, "match the "+subject+" case-sensitively")
}

func (p patternFlags) definition() *rule.PatternDefinition {
	if p.value == "" {
		return nil
	}
	return &rule.PatternDefinition{
		Value:         p.value,
		MatchMode:     rule.MatchMode(p.mode),
		CaseSensitive: p.caseSensitive,
	}
}

func newRulesAddCmd(deps *Dependencies) *cobra.Command {
	var (
		priority int
		criteria string
		proc     patternFlags
		title    patternFlags
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a recognition rule",
		Example: `  worklog rules add Zoom --process zoom --title "Zoom Meeting*" --title-mode wildcard
  worklog rules add "Google Meet" --criteria window_title_only --title "Meet - " --title-mode starts_with`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if criteria == "" {
				switch {
				case proc.value != "" && title.value != "":
					criteria = string(rule.CriteriaBoth)
				case title.value != "":
					criteria = string(rule.CriteriaWindowTitleOnly)
				default:
					criteria = string(rule.CriteriaProcessNameOnly)
				}
			}

			created, err := deps.App.Rules.Create(cmd.Context(), rule.CreateRequest{
				Name:               args[0],
				Priority:           priority,
				Criteria:           rule.Criteria(criteria),
				ProcessNamePattern: proc.definition(),
				WindowTitlePattern: title.definition(),
			})
			if err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).Success(fmt.Sprintf("Added rule %s (%s)", created.Name, created.ID))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&priority, "priority", 100, "evaluation order, lower first")
	flags.StringVar(&criteria, "criteria", "", "process_name_only, window_title_only or both (inferred from the patterns given)")
	proc.register(flags, "process", "process name")
	title.register(flags, "title", "window title")

	return cmd
}

func newRulesRemoveCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a recognition rule",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule id %q: %w", args[0], err)
			}
			if err := deps.App.Rules.Delete(cmd.Context(), id); err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).Success("Removed rule " + id.String())
			return nil
		},
	}
}

func newRulesImportCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import rules from a YAML file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			imported, err := deps.App.Rules.Import(cmd.Context(), r)
			if err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).Success(fmt.Sprintf("Imported %d rules", len(imported)))
			return nil
		},
	}
}
