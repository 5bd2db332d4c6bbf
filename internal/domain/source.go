package domain

// RunMode represents how a classification run was started.
type RunMode string

const (
	RunModeScan  RunMode = "SCAN"
	RunModeWatch RunMode = "WATCH"
)

// String returns the string representation of RunMode.
func (m RunMode) String() string {
	return string(m)
}

// IsValid checks if the mode is a valid value.
func (m RunMode) IsValid() bool {
	return m == RunModeScan || m == RunModeWatch
}
