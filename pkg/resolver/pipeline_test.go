package resolver

import "testing"

func TestValidateOrder_DeclaredPipelineIsValid(t *testing.T) {
	if err := validateOrder(pipeline()); err != nil {
		t.Fatalf("the declared pipeline must satisfy its own prerequisites: %v", err)
	}
}

func TestValidateOrder_Errors(t *testing.T) {
	noop := func(rc *runContext) error { return nil }

	tests := []struct {
		name  string
		steps []Step
	}{
		{
			name: "prerequisite runs later",
			steps: []Step{
				{Name: "surface", Requires: []string{"grid"}, Run: noop},
				{Name: "grid", Run: noop},
			},
		},
		{
			name: "prerequisite does not exist",
			steps: []Step{
				{Name: "grid", Requires: []string{"bootstrap"}, Run: noop},
			},
		},
		{
			name: "duplicate step name",
			steps: []Step{
				{Name: "grid", Run: noop},
				{Name: "grid", Run: noop},
			},
		},
		{
			name: "empty step name",
			steps: []Step{
				{Name: "", Run: noop},
			},
		},
		{
			name: "step requires itself",
			steps: []Step{
				{Name: "grid", Requires: []string{"grid"}, Run: noop},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateOrder(tt.steps); err == nil {
				t.Error("expected order validation to fail")
			}
		})
	}
}
