package tui

import "github.com/magenta-aps/suila-engine/internal/calculation"

// ResultLoadedMsg carries a fully computed run into the model.
type ResultLoadedMsg struct {
	Result *calculation.RunResult
}

// ErrorMsg carries a fatal load or calculation error.
type ErrorMsg struct {
	Err error
}
