package checkpoints

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// runConfigName is the per-run configuration file written by the
// training driver when a run is submitted.
const runConfigName = "submit_config.yaml"

// RunConfig carries the configuration recovered from a previous run:
// the full set of training kwargs and the dataset arguments extracted
// from them. Missing sections come back as empty maps.
type RunConfig struct {
	Train   map[string]interface{}
	Dataset map[string]interface{}
}

// PreviousRunConfig reads runDir's submit_config.yaml and extracts the
// run_func_kwargs mapping and its dataset_args sub-mapping.
func PreviousRunConfig(runDir string) (*RunConfig, error) {
	path := filepath.Join(runDir, runConfigName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading run config %q", path)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing run config %q", path)
	}

	train := asStringMap(doc["run_func_kwargs"])
	dataset := asStringMap(train["dataset_args"])
	return &RunConfig{Train: train, Dataset: dataset}, nil
}

// asStringMap normalizes yaml.v2's map[interface{}]interface{} nesting.
func asStringMap(v interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	switch m := v.(type) {
	case map[string]interface{}:
		for k, value := range m {
			out[k] = value
		}
	case map[interface{}]interface{}:
		for k, value := range m {
			if key, ok := k.(string); ok {
				out[key] = value
			}
		}
	}
	return out
}
