package output

import (
	"encoding/json"

	"github.com/magenta-aps/suila-engine/internal/calculation"
)

// JSONFormatter emits the whole run result as indented JSON for downstream
// tooling.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(result *calculation.RunResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}
