package domain

// Step represents a node in a script graph: one screen of call-guide
// content with the buttons an operator can click to move on.
type Step struct {
	ID    string `json:"id"      yaml:"id"      validate:"required"`
	Title string `json:"title"   yaml:"title"   validate:"required"`

	// Content holds the rich text displayed to the operator. It may embed
	// placeholder tokens (see package render); the engine passes it through
	// verbatim and never substitutes them itself.
	Content string `json:"content" yaml:"content"`

	// Order is used only for administrative listing, never for traversal.
	Order int `json:"order" yaml:"order"`

	// Buttons defines the outgoing edges of this step, in display order.
	Buttons []Button `json:"buttons" yaml:"buttons" validate:"dive"`

	// ProductID is an optional back-reference to the owning Product,
	// used to scope lookups when products share step ids.
	ProductID string `json:"product_id,omitempty" yaml:"product_id,omitempty"`

	// Tabulation is advisory end-of-call metadata surfaced to the operator
	// when a call ends at this step. It has no effect on traversal.
	Tabulation *TabulationInfo `json:"tabulation_info,omitempty" yaml:"tabulation_info,omitempty"`
}

// Button is a labeled edge from one Step to another.
type Button struct {
	ID    string `json:"id"    yaml:"id"    validate:"required"`
	Label string `json:"label" yaml:"label" validate:"required"`

	// NextStepID is the id of the target Step. Empty means terminal:
	// the session ends and control returns to the configuration state.
	// A JSON null decodes to the empty string, so both spellings of
	// "end of call" collapse to the same value.
	NextStepID string `json:"next_step_id" yaml:"next_step_id"`

	// Order defines left-to-right display priority. Traversal ignores it.
	Order int `json:"order" yaml:"order"`

	// Primary is a presentation hint only.
	Primary bool `json:"primary,omitempty" yaml:"primary,omitempty"`
}

// Terminal reports whether clicking this button ends the scripted flow.
func (b Button) Terminal() bool {
	return b.NextStepID == ""
}

// TabulationInfo names the end-of-call outcome suggested by a step.
type TabulationInfo struct {
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description"`
}
