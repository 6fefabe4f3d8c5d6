package backport

import (
	"fmt"
	"strings"
)

// ConflictPrefix marks the title of a merge request that carries unresolved conflicts.
const ConflictPrefix = "[CONFLICT]"

const conflictWarning = "WARNING: Conflicts detected during cherry-pick.\n" +
	"This Merge Request was created automatically but contains conflicts. " +
	"Please resolve them manually before merging."

// BranchName returns the working branch for backporting merge request iid onto target.
func BranchName(iid int64, target string) string {
	return fmt.Sprintf("backport/mr-%d-to-%s", iid, target)
}

// Title returns the title of the backport merge request.
func Title(original string, iid int64) string {
	return fmt.Sprintf("[Backport] Fix: %s (from !%d)", original, iid)
}

// ConflictTitle prefixes title with the conflict marker.
func ConflictTitle(title string) string {
	return ConflictPrefix + " " + title
}

// Description returns the description of the backport merge request.
func Description(sha string, iid int64) string {
	return fmt.Sprintf("Automatic backport of commit %s from Merge Request !%d.", sha, iid)
}

// ConflictDescription appends the conflicting files and the manual
// resolution warning to description.
func ConflictDescription(description string, files []string) string {
	var b strings.Builder
	b.WriteString(description)
	if len(files) > 0 {
		b.WriteString("\n\nConflicting files:")
		for _, f := range files {
			b.WriteString("\n- `" + f + "`")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(conflictWarning)
	return b.String()
}

// ConflictCommitMessage is the message of the commit that captures conflict markers.
func ConflictCommitMessage(sha string) string {
	return fmt.Sprintf("Backport conflicts in %s - manual fix required", sha)
}
