package input

import (
	"gitbulk/internal/ui/logic"
)

// ModelContext implements the Context interface for the input handler
type ModelContext struct {
	Rows      []logic.Row
	Navigator *logic.Navigator
	Root      string
}

func (c *ModelContext) current() (logic.Row, bool) {
	i := c.Navigator.Selected()
	if i < 0 || i >= len(c.Rows) {
		return logic.Row{}, false
	}
	return c.Rows[i], true
}

func (c *ModelContext) IsOnRepository() bool {
	row, ok := c.current()
	return ok && row.Kind == logic.RowRepository
}

func (c *ModelContext) IsOnBranch() bool {
	row, ok := c.current()
	return ok && row.Kind == logic.RowBranch
}

// CurrentRepositoryPath is the repository of the selected row, branch rows included
func (c *ModelContext) CurrentRepositoryPath() string {
	row, ok := c.current()
	if !ok {
		return ""
	}
	return row.Node.Path()
}

func (c *ModelContext) CurrentBranchName() string {
	row, ok := c.current()
	if !ok || row.Kind != logic.RowBranch {
		return ""
	}
	return row.Branch.FriendlyName
}

func (c *ModelContext) BaseDir() string {
	return c.Root
}
