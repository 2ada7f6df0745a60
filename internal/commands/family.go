package commands

import (
	"github.com/spf13/cobra"

	"carecal/internal/commands/options"
	"carecal/internal/model"
	"carecal/internal/printer"
)

func addFamily(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "family",
		Short: "List family members from family_vcard and the emergency contacts.",
		Example: `
carecal family
carecal family --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := co.Load()
			if err != nil {
				return err
			}
			roster, err := loadRoster(cfg)
			if err != nil {
				return oo.HandleError(cmd.OutOrStdout(), err)
			}

			if oo.JSON {
				return oo.PrintJSON(cmd.OutOrStdout(), struct {
					Family    []model.Member  `json:"family"`
					Emergency []model.Contact `json:"emergency"`
				}{roster.List(), cfg.Emergency})
			}
			printer.New(cmd.OutOrStdout(), nil).Contacts(roster.List(), cfg.Emergency)
			return nil
		},
	}
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
