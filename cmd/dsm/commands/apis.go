package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewAPIsCommand creates the apis command listing the advertised APIs.
func NewAPIsCommand() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "apis",
		Short: "List the APIs the server advertises",
		Long:  "Query SYNO.API.Info and display every advertised API with its path and version range",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd, false)
			if err != nil {
				return err
			}

			capabilities, err := client.RefreshCapabilities(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to query APIs: %w", err)
			}

			filtered := make(dsm.CapabilityMap, len(capabilities))
			for name, capability := range capabilities {
				if strings.HasPrefix(name, prefix) {
					filtered[name] = capability
				}
			}

			return renderOutput(cmd.OutOrStdout(), filtered, func(table *tablewriter.Table) {
				table.Header("API", "Path", "Min", "Max")

				for _, name := range filtered.Names() {
					capability := filtered[name]
					_ = table.Append(name, capability.Path,
						strconv.Itoa(capability.MinVersion), strconv.Itoa(capability.MaxVersion))
				}
			})
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only show APIs whose name starts with this prefix, for example SYNO.FileStation")

	return cmd
}
