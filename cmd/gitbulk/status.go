package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gitbulk/internal/domain"
	"gitbulk/internal/logic"
	"gitbulk/internal/logpipe"
	"gitbulk/internal/orchestrator"
)

// errRepositoriesFailed makes the status command exit non-zero
var errRepositoriesFailed = errors.New("some repositories reported errors")

var (
	// isTerminalFD and getTerminalSize are overridable in tests
	isTerminalFD    = term.IsTerminal
	getTerminalSize = term.GetSize

	rootStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dirtyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	behindStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	branchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type statusOptions struct {
	fetch    bool
	branches bool
	quiet    bool
}

func buildStatusCommand(f *flags) *cobra.Command {
	var opts statusOptions

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the repository tree without the interactive window",
		Long: `Discover the repositories under the root directory, refresh their status
and print one line per repository. The log is written to stderr. The command
exits non-zero when any repository reports an error.`,
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			a, err := injectApp(*f)
			if err != nil {
				return err
			}
			defer a.bus.Close()

			closeLog, err := setupLogging(a.cfg, f.debug)
			if err != nil {
				return err
			}
			defer closeLog()

			return runStatus(command, a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.fetch, "fetch", false, "Fetch every repository before printing")
	cmd.Flags().BoolVarP(&opts.branches, "branches", "b", false, "List the local branches of each repository")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the log")
	return cmd
}

func runStatus(cmd *cobra.Command, a *app, opts statusOptions) error {
	ctx := cmd.Context()
	root := a.cfg.RootDir()

	_, err := a.orch.Load(ctx, root)
	if err != nil && !errors.Is(err, orchestrator.ErrDiscoveryEmpty) {
		return err
	}
	if err == nil && opts.fetch {
		// failures are recorded on the nodes and reported below
		_, _ = a.orch.FetchAll(ctx)
	}

	var logOut io.Writer = cmd.ErrOrStderr()
	if opts.quiet {
		logOut = io.Discard
	}
	a.pipeline.Flush(logpipe.WriterRenderer{W: logOut})

	failed := printTree(cmd.OutOrStdout(), root, a.orch.Nodes(), opts.branches, outputWidth(cmd))
	if failed > 0 {
		return fmt.Errorf("%w: %d", errRepositoriesFailed, failed)
	}
	return nil
}

// printTree writes the root and one line per node, returning how many nodes carry an error
func printTree(w io.Writer, root string, nodes []*domain.RepositoryNode, branches bool, width int) int {
	line := lipgloss.NewStyle()
	if width > 0 {
		line = line.MaxWidth(width)
	}

	fmt.Fprintln(w, line.Render(rootStyle.Render(fmt.Sprintf("%s (%d)", root, len(nodes)))))

	failed := 0
	for _, node := range nodes {
		style := lipgloss.NewStyle()
		switch {
		case node.HasError():
			failed++
			style = errorStyle
		case node.IsDirty():
			style = dirtyStyle
		case node.IsHeadBehind():
			style = behindStyle
		}
		fmt.Fprintln(w, line.Render("  "+style.Render(node.Text())))

		if !branches {
			continue
		}
		rows, err := logic.ComputeBranches(node)
		if err != nil {
			fmt.Fprintln(w, line.Render("    "+errorStyle.Render(err.Error())))
			continue
		}
		for _, b := range rows {
			marker := "  "
			if b.IsCurrentHead {
				marker = "* "
			}
			fmt.Fprintln(w, line.Render("    "+marker+branchStyle.Render(b.Text())))
		}
	}
	return failed
}

// outputWidth is the terminal width of stdout, or 0 when it is not a terminal
func outputWidth(cmd *cobra.Command) int {
	file, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return 0
	}
	fd := int(file.Fd())
	if !isTerminalFD(fd) {
		return 0
	}
	width, _, err := getTerminalSize(fd)
	if err != nil || width <= 0 {
		return 0
	}
	return width
}
