package orchestrator

// CommandType identifies a user command
type CommandType int

const (
	CommandCopyPath CommandType = iota
	CommandCheckoutBranch
	CommandResetBranch
	CommandDeleteBranch
	CommandStatus
	CommandFetch
	CommandPull
	CommandUpdate
	CommandViewChanges
	CommandToggleExpand
	CommandStatusAll
	CommandFetchAll
	CommandPullAll
	CommandUpdateAll
	CommandLoad
	CommandExpandAll
	CommandCollapseAll
	CommandToggleLog
	CommandResetLog
	CommandChangeBaseDir
	CommandHelp
)

// Target is where a command applies
type Target int

const (
	TargetBranch Target = 1 << iota
	TargetRepository
	TargetTree
	TargetLog
)

// Command describes one entry of the command catalogue
type Command struct {
	Type        CommandType
	Target      Target
	Description string
}

// Commands is the catalogue in display order
var Commands = []Command{
	{CommandCopyPath, TargetRepository, "Copy repository path to clipboard"},

	// branch
	{CommandCheckoutBranch, TargetBranch, "Checkout selected branch"},
	{CommandResetBranch, TargetBranch, "Reset selected branch"},
	{CommandDeleteBranch, TargetBranch, "Delete selected branch"},

	// single repository
	{CommandStatus, TargetRepository, "Retrieve status for selected repository"},
	{CommandFetch, TargetRepository, "Fetch for selected repository"},
	{CommandPull, TargetRepository, "Pull for selected repository"},
	{CommandUpdate, TargetRepository, "Update selected repository"},
	{CommandViewChanges, TargetRepository, "View changes in selected repository"},
	{CommandToggleExpand, TargetRepository, "Expand/collapse selected repository node"},

	// bulk
	{CommandStatusAll, TargetTree, "Retrieve status for all repositories"},
	{CommandFetchAll, TargetTree, "Fetch for all repositories"},
	{CommandPullAll, TargetTree, "Pull for all repositories"},
	{CommandUpdateAll, TargetTree, "Update all repositories"},

	// generic
	{CommandLoad, TargetTree, "Reload all repositories"},
	{CommandExpandAll, TargetTree, "Expand all repository nodes"},
	{CommandCollapseAll, TargetTree, "Collapse all repository nodes"},
	{CommandToggleLog, TargetTree | TargetLog, "Toggle log window view"},
	{CommandResetLog, TargetTree | TargetLog, "Reset log window"},
	{CommandChangeBaseDir, TargetTree | TargetLog, "Change base directory"},
	{CommandHelp, TargetTree | TargetLog, "Show help"},
}

func (c CommandType) String() string {
	for _, cmd := range Commands {
		if cmd.Type == c {
			return cmd.Description
		}
	}
	return "Unknown command"
}
