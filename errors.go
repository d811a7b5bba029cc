package nbdc

import (
	"fmt"
	"strings"
)

// StudyNotFoundError indicates that the archive lacks the requested
// top-level study key.
type StudyNotFoundError struct {
	Study     string
	Available []string
}

func (e *StudyNotFoundError) Error() string {
	return fmt.Sprintf("study %q not found in archive; available studies: %s",
		e.Study, strings.Join(e.Available, ", "))
}

// ReleaseNotFoundError indicates that none of the release key naming
// conventions matched the requested version.
type ReleaseNotFoundError struct {
	Version   string
	Tried     []string
	Available []string
}

func (e *ReleaseNotFoundError) Error() string {
	return fmt.Sprintf("release %q not found (tried keys %s); available releases: %s",
		e.Version, strings.Join(e.Tried, ", "), strings.Join(e.Available, ", "))
}

// UnexpectedStructureError indicates that a release entry did not
// contain a data dictionary table after unwrapping.
type UnexpectedStructureError struct {
	Key      string
	Observed string
}

func (e *UnexpectedStructureError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("release entry is not a data table: observed %s", e.Observed)
	}
	return fmt.Sprintf("release entry key %q does not hold a data table: observed %s", e.Key, e.Observed)
}

// MaterializationError indicates that every recovery strategy was
// exhausted without restoring full-length columns.
type MaterializationError struct {
	Column string
	Have   int
	Want   int
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("table could not be materialized: column %s holds %d of %d rows after all recovery strategies",
		e.Column, e.Have, e.Want)
}
