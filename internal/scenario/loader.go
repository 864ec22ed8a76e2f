package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// scenarioDoc is the YAML shape of a user-supplied scenario file.
type scenarioDoc struct {
	Label       string         `yaml:"label"`
	Description string         `yaml:"description"`
	Steps       []stepDoc      `yaml:"steps"`
	SoftChecks  []softCheckDoc `yaml:"soft_checks,omitempty"`
}

// stepDoc is one declarative step. Op selects the primitive; the remaining
// fields bind its literal arguments. TimeoutSecs overrides the wait budget
// for this step only.
type stepDoc struct {
	Op          string `yaml:"op"`
	URL         string `yaml:"url,omitempty"`
	Field       string `yaml:"field,omitempty"`
	Value       string `yaml:"value,omitempty"`
	ID          string `yaml:"id,omitempty"`
	Label       string `yaml:"label,omitempty"`
	Units       int    `yaml:"units,omitempty"`
	Count       int    `yaml:"count,omitempty"`
	Selector    string `yaml:"selector,omitempty"`
	Desc        string `yaml:"desc,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs,omitempty"`
}

type softCheckDoc struct {
	Desc     string `yaml:"desc"`
	Selector string `yaml:"selector"`
}

// LoadScenarioFile reads and parses one scenario YAML file. Unknown fields
// are rejected to catch typos, and validation errors name the offending
// step index.
func LoadScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var doc scenarioDoc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	sc, err := buildScenario(&doc)
	if err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", filepath.Base(path), err)
	}
	return sc, nil
}

// LoadScenarioDir loads every .yaml/.yml file under dir, sorted by path so
// the registration order is deterministic.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	var out []*Scenario
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		sc, err := LoadScenarioFile(path)
		if err != nil {
			return err
		}
		out = append(out, sc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func buildScenario(doc *scenarioDoc) (*Scenario, error) {
	if doc.Label == "" {
		return nil, fmt.Errorf("label is required")
	}
	if doc.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("steps list is required and must be non-empty")
	}

	sc := &Scenario{Label: doc.Label, Description: doc.Description}
	for i, sd := range doc.Steps {
		step, err := buildStep(&sd)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		if sd.TimeoutSecs > 0 {
			step = withTimeout(step, time.Duration(sd.TimeoutSecs)*time.Second)
		}
		sc.Steps = append(sc.Steps, step)
	}

	for i, cd := range doc.SoftChecks {
		if cd.Selector == "" {
			return nil, fmt.Errorf("soft_checks[%d]: selector is required", i)
		}
		desc := cd.Desc
		if desc == "" {
			desc = cd.Selector
		}
		sc.SoftChecks = append(sc.SoftChecks, SoftCheck{Desc: desc, Selector: cd.Selector})
	}
	return sc, nil
}

func buildStep(sd *stepDoc) (Step, error) {
	switch sd.Op {
	case "load_page":
		return LoadPage(sd.URL), nil
	case "select_async":
		if sd.Field == "" || sd.Value == "" {
			return Step{}, fmt.Errorf("select_async requires field and value")
		}
		return SelectAsyncOption(sd.Field, sd.Value), nil
	case "select_async_containing":
		if sd.Field == "" || sd.Value == "" {
			return Step{}, fmt.Errorf("select_async_containing requires field and value")
		}
		return SelectAsyncOptionContaining(sd.Field, sd.Value), nil
	case "select_static":
		if sd.Field == "" || sd.Value == "" {
			return Step{}, fmt.Errorf("select_static requires field and value")
		}
		return SelectStaticOption(sd.Field, sd.Value), nil
	case "click":
		if sd.ID == "" {
			return Step{}, fmt.Errorf("click requires id")
		}
		return ClickControl(sd.ID), nil
	case "click_labeled":
		if sd.Label == "" {
			return Step{}, fmt.Errorf("click_labeled requires label")
		}
		return ClickLabeled(sd.Label), nil
	case "navigate_tab":
		if sd.Label == "" {
			return Step{}, fmt.Errorf("navigate_tab requires label")
		}
		return NavigateTab(sd.Label), nil
	case "settle":
		if sd.Units <= 0 {
			return Step{}, fmt.Errorf("settle requires positive units")
		}
		return Settle(sd.Units), nil
	case "wait_options":
		if sd.Field == "" || sd.Count <= 0 {
			return Step{}, fmt.Errorf("wait_options requires field and positive count")
		}
		return WaitOptions(sd.Field, sd.Count), nil
	case "expect_present":
		if sd.Selector == "" {
			return Step{}, fmt.Errorf("expect_present requires selector")
		}
		desc := sd.Desc
		if desc == "" {
			desc = fmt.Sprintf("expect %q present", sd.Selector)
		}
		return ExpectPresent(desc, sd.Selector), nil
	case "":
		return Step{}, fmt.Errorf("op is required")
	default:
		return Step{}, fmt.Errorf("unknown op %q", sd.Op)
	}
}
