package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validScenarioYAML = `label: custom_filter
description: Custom department filter
steps:
  - op: load_page
  - op: select_async
    field: enrl_dept
    value: MATH
  - op: select_static
    field: sf_level
    value: upper
  - op: click
    id: enrl_button
  - op: settle
    units: 3
  - op: expect_present
    selector: ".dataTables_wrapper"
    desc: results table
soft_checks:
  - desc: summary table
    selector: "#type_summary table"
`

func TestLoadScenarioFile_Valid(t *testing.T) {
	path := writeScenarioFile(t, t.TempDir(), "custom.yaml", validScenarioYAML)

	sc, err := LoadScenarioFile(path)
	require.NoError(t, err)

	assert.Equal(t, "custom_filter", sc.Label)
	assert.Equal(t, "Custom department filter", sc.Description)
	assert.Len(t, sc.Steps, 6)
	require.Len(t, sc.SoftChecks, 1)
	assert.Equal(t, "#type_summary table", sc.SoftChecks[0].Selector)
}

func TestLoadScenarioFile_UnknownFieldRejected(t *testing.T) {
	path := writeScenarioFile(t, t.TempDir(), "typo.yaml", `label: typo
description: has a typo
stepz:
  - op: load_page
`)

	_, err := LoadScenarioFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenarioFile_UnknownOpNamesIndex(t *testing.T) {
	path := writeScenarioFile(t, t.TempDir(), "badop.yaml", `label: badop
description: unknown op
steps:
  - op: load_page
  - op: teleport
`)

	_, err := LoadScenarioFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[1]")
	assert.Contains(t, err.Error(), "teleport")
}

func TestLoadScenarioFile_MissingRequiredArgs(t *testing.T) {
	cases := map[string]string{
		"select_async without field": `label: x
description: y
steps:
  - op: select_async
    value: HIST
`,
		"click without id": `label: x
description: y
steps:
  - op: click
`,
		"settle without units": `label: x
description: y
steps:
  - op: settle
`,
		"navigate_tab without label": `label: x
description: y
steps:
  - op: navigate_tab
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeScenarioFile(t, t.TempDir(), "bad.yaml", content)
			_, err := LoadScenarioFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "steps[0]")
		})
	}
}

func TestLoadScenarioFile_MissingMetadata(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadScenarioFile(writeScenarioFile(t, dir, "nolabel.yaml", `description: y
steps:
  - op: load_page
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label is required")

	_, err = LoadScenarioFile(writeScenarioFile(t, dir, "nosteps.yaml", `label: x
description: y
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps")
}

func TestLoadScenarioFile_ErrorNamesFile(t *testing.T) {
	path := writeScenarioFile(t, t.TempDir(), "broken.yaml", `label: x
description: y
steps:
  - op: warp
`)

	_, err := LoadScenarioFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestLoadScenarioDir(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "b_second.yaml", `label: second
description: second scenario
steps:
  - op: load_page
`)
	writeScenarioFile(t, dir, "a_first.yml", `label: first
description: first scenario
steps:
  - op: load_page
`)
	writeScenarioFile(t, dir, "README.md", "not a scenario")

	scs, err := LoadScenarioDir(dir)
	require.NoError(t, err)
	require.Len(t, scs, 2)

	// Sorted by path, so registration order is deterministic.
	assert.Equal(t, "first", scs[0].Label)
	assert.Equal(t, "second", scs[1].Label)
}

func TestLoadScenarioDir_PropagatesFileError(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "bad.yaml", `label: x`)

	_, err := LoadScenarioDir(dir)
	require.Error(t, err)
}

func TestLoadScenarioFile_WaitOptions(t *testing.T) {
	path := writeScenarioFile(t, t.TempDir(), "waitopts.yaml", `label: waitopts
description: wait for the term list to populate
steps:
  - op: wait_options
    field: enrl_term
    count: 2
`)

	sc, err := LoadScenarioFile(path)
	require.NoError(t, err)
	require.Len(t, sc.Steps, 1)
	assert.Contains(t, sc.Steps[0].Desc, "enrl_term")

	_, err = LoadScenarioFile(writeScenarioFile(t, t.TempDir(), "bad.yaml", `label: x
description: y
steps:
  - op: wait_options
    field: enrl_term
`))
	require.Error(t, err)
}

func TestLoadScenarioFile_StepTimeoutOverride(t *testing.T) {
	path := writeScenarioFile(t, t.TempDir(), "slow.yaml", `label: slow
description: long-running refresh
steps:
  - op: expect_present
    selector: "#type_summary table"
    timeout_secs: 120
`)

	sc, err := LoadScenarioFile(path)
	require.NoError(t, err)
	require.Len(t, sc.Steps, 1)
}
