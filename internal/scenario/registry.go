package scenario

import "fmt"

// SelectorAll selects every registered scenario in declared order.
const SelectorAll = "all"

// Registry holds scenarios in a fixed declared order. Labels are unique,
// which also guarantees a Report never carries two outcomes for the same
// scenario within one run.
type Registry struct {
	order   []string
	byLabel map[string]*Scenario
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byLabel: make(map[string]*Scenario)}
}

// Register adds a scenario. Duplicate labels are rejected.
func (r *Registry) Register(sc *Scenario) error {
	if sc.Label == "" {
		return fmt.Errorf("scenario label is required")
	}
	if sc.Label == SelectorAll {
		return fmt.Errorf("label %q is reserved", SelectorAll)
	}
	if _, exists := r.byLabel[sc.Label]; exists {
		return fmt.Errorf("scenario %q already registered", sc.Label)
	}
	r.order = append(r.order, sc.Label)
	r.byLabel[sc.Label] = sc
	return nil
}

// Lookup returns the scenario registered under label, or an
// UNKNOWN_SCENARIO error.
func (r *Registry) Lookup(label string) (*Scenario, error) {
	sc, ok := r.byLabel[label]
	if !ok {
		return nil, NewUnknownScenarioError(label)
	}
	return sc, nil
}

// Labels returns the registered labels in declared order.
func (r *Registry) Labels() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every scenario in declared order.
func (r *Registry) All() []*Scenario {
	out := make([]*Scenario, 0, len(r.order))
	for _, label := range r.order {
		out = append(out, r.byLabel[label])
	}
	return out
}

// Builtins returns the registry of dashboard workflows, in their fixed
// execution order. Later scenarios intentionally observe whatever document
// state earlier scenarios left behind; the tab workflows rely on it.
func Builtins() *Registry {
	r := NewRegistry()

	mustRegister(r, &Scenario{
		Label:       "enrollment",
		Description: "Enrollment tab exposes its filter controls",
		Steps: []Step{
			NavigateTab("Enrollment"),
			ExpectPresent("enrollment controls present", "#enrl_dept"),
		},
	})

	mustRegister(r, &Scenario{
		Label:       "dept_filter",
		Description: "Department filter: HIST, term 202580, refresh",
		Steps: []Step{
			LoadPage(""),
			SelectAsyncOption("enrl_dept", "HIST"),
			SelectAsyncOption("enrl_term", "202580"),
			ClickControl("enrl_button"),
			Settle(3),
		},
		SoftChecks: []SoftCheck{
			{Desc: "results table", Selector: ".dataTables_wrapper"},
		},
	})

	mustRegister(r, &Scenario{
		Label:       "low_enrollment_alert",
		Description: "Low enrollment alert: HIST, term 202610, generate dashboard",
		Steps: []Step{
			NavigateTab("Low Enrollment Alert"),
			SelectAsyncOption("enrl_dept", "HIST"),
			SelectAsyncOption("enrl_term", "202610"),
			ClickLabeled("Generate Alert Dashboard"),
			Settle(3),
		},
	})

	mustRegister(r, &Scenario{
		Label:       "headcount",
		Description: "Headcount tab: college, department, generate table",
		Steps: []Step{
			NavigateTab("Headcount"),
			SelectAsyncOptionContaining("hc_college", "Arts"),
			SelectAsyncOption("hc_dept", "HIST"),
			ClickControl("hc_button"),
			Settle(3),
		},
		SoftChecks: []SoftCheck{
			{Desc: "headcount plots or table", Selector: "#hc_undergrad_plot, #hc_grad_plot, .dataTables_wrapper"},
		},
	})

	mustRegister(r, &Scenario{
		Label:       "seatfinder",
		Description: "Seatfinder tab: college AS, term 202610, level lower",
		Steps: []Step{
			NavigateTab("Seatfinder"),
			SelectAsyncOption("sf_college", "AS"),
			SelectAsyncOption("sf_term", "202610"),
			SelectStaticOption("sf_level", "lower"),
			ClickControl("sf_button"),
			// Seatfinder recomputes server-side and can take a while.
			Settle(8),
		},
		SoftChecks: []SoftCheck{
			{Desc: "seat summary table", Selector: "#type_summary table"},
		},
	})

	return r
}

// mustRegister panics on registration failure. Builtins are declared in
// code, so a failure here is a programming error, not input.
func mustRegister(r *Registry, sc *Scenario) {
	if err := r.Register(sc); err != nil {
		panic(err)
	}
}
