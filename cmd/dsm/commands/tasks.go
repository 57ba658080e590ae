package commands

import (
	"fmt"
	"time"

	"github.com/fivetwenty-io/dsm/pkg/dsm"
	"github.com/fivetwenty-io/dsm/pkg/filestation"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type taskFlags struct {
	wait         bool
	pollInterval time.Duration
	timeout      time.Duration
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.wait, "wait", "w", false, "wait for the task to finish")
	cmd.Flags().DurationVar(&f.pollInterval, "poll-interval", filestation.DefaultPollInterval, "delay between status checks while waiting")
	cmd.Flags().DurationVar(&f.timeout, "timeout", filestation.DefaultPollTimeout, "maximum time to wait")
}

func (f *taskFlags) options(cmd *cobra.Command) []filestation.WaitOption {
	opts := []filestation.WaitOption{
		filestation.WithPollInterval(f.pollInterval),
		filestation.WithPollTimeout(f.timeout),
	}

	if viper.GetBool("verbose") {
		opts = append(opts, filestation.WithProgress(func(progress float64) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "progress: %.0f%%\n", progress*100)
		}))
	}

	return opts
}

// NewCopyCommand creates the cp command
func NewCopyCommand() *cobra.Command {
	return newCopyMoveCommand("cp SOURCE... FOLDER", "Copy files and folders", false)
}

// NewMoveCommand creates the mv command
func NewMoveCommand() *cobra.Command {
	return newCopyMoveCommand("mv SOURCE... FOLDER", "Move files and folders", true)
}

func newCopyMoveCommand(use, short string, move bool) *cobra.Command {
	var (
		overwrite bool
		flags     taskFlags
	)

	verb := "copy"
	if move {
		verb = "move"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: fmt.Sprintf(`Start a background task to %s entries into FOLDER.

Without --wait the task id is printed and the command returns at once.`, verb),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := filestation.CopyMoveOptions{
				Paths:          args[:len(args)-1],
				DestFolderPath: args[len(args)-1],
				RemoveSource:   move,
			}

			if cmd.Flags().Changed("overwrite") {
				opts.Overwrite = &overwrite
			}

			client, err := createClient(cmd, true)
			if err != nil {
				return err
			}

			task, err := startTask(cmd, client, filestation.CopyMoveStart(opts), verb)
			if err != nil {
				return err
			}

			if !flags.wait {
				return renderTask(cmd, task)
			}

			status, err := filestation.WaitCopyMove(cmd.Context(), client, task.TaskID, flags.options(cmd)...)
			if err != nil {
				return fmt.Errorf("%s task %s: %w", verb, task.TaskID, err)
			}

			return renderOutput(cmd.OutOrStdout(), status, func(table *tablewriter.Table) {
				table.Header("Task", "Destination", "Processed", "Finished")
				_ = table.Append(task.TaskID, status.DestFolderPath, formatBytes(status.ProcessedSize), formatBool(status.Finished))
			})
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing entries (false skips them)")
	flags.register(cmd)

	return cmd
}

// NewRemoveCommand creates the rm command
func NewRemoveCommand() *cobra.Command {
	var (
		recursive bool
		flags     taskFlags
	)

	cmd := &cobra.Command{
		Use:   "rm PATH...",
		Short: "Delete files and folders",
		Long: `Start a background task deleting files and folders.

Without --wait the task id is printed and the command returns at once.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := filestation.DeleteOptions{Paths: args}

			if cmd.Flags().Changed("recursive") {
				opts.Recursive = &recursive
			}

			client, err := createClient(cmd, true)
			if err != nil {
				return err
			}

			task, err := startTask(cmd, client, filestation.DeleteStart(opts), "delete")
			if err != nil {
				return err
			}

			if !flags.wait {
				return renderTask(cmd, task)
			}

			status, err := filestation.WaitDelete(cmd.Context(), client, task.TaskID, flags.options(cmd)...)
			if err != nil {
				return fmt.Errorf("delete task %s: %w", task.TaskID, err)
			}

			return renderOutput(cmd.OutOrStdout(), status, func(table *tablewriter.Table) {
				table.Header("Task", "Processed", "Total", "Finished")
				_ = table.Append(task.TaskID, fmt.Sprint(status.ProcessedNum), fmt.Sprint(status.Total), formatBool(status.Finished))
			})
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "delete folder content")
	flags.register(cmd)

	return cmd
}

func startTask(cmd *cobra.Command, client dsm.Client, req *dsm.Request[filestation.TaskData], verb string) (*filestation.TaskData, error) {
	task, err := dsm.Get(cmd.Context(), client, req)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s task: %w", verb, err)
	}

	if task.TaskID == "" {
		return nil, ErrNoTaskID
	}

	return task, nil
}

func renderTask(cmd *cobra.Command, task *filestation.TaskData) error {
	return renderOutput(cmd.OutOrStdout(), task, func(table *tablewriter.Table) {
		table.Header("Task")
		_ = table.Append(task.TaskID)
	})
}
