package commands

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/fivetwenty-io/dsm/pkg/filestation"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display File Station information",
		Long:  "Display the File Station settings of the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd, true)
			if err != nil {
				return err
			}

			info, err := dsm.Get(cmd.Context(), client, filestation.GetInfo())
			if err != nil {
				return fmt.Errorf("failed to get info: %w", err)
			}

			return renderOutput(cmd.OutOrStdout(), info, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Hostname", info.Hostname)
				_ = table.Append("Manager", formatBool(info.IsManager))
				_ = table.Append("Sharing", formatBool(info.SupportSharing))
				_ = table.Append("Virtual Protocols", strings.Join(info.VirtualProtocols, ", "))
			})
		},
	}
}
