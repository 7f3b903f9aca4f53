/*
Package importer turns loosely-typed bulk script documents into validated
domain records.

Script authoring tools export steps and products as free-form JSON or YAML.
Rather than letting duck-typed maps reach the engine's lookup path, the
importer decodes each entry into its typed record, validates it, and
quarantines anything malformed. The navigation session only ever sees
steps that passed this gate.
*/
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/callguide/roteiro/pkg/domain"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// document is the loose on-disk shape: entries stay untyped until each one
// is decoded and validated individually, so one bad entry cannot sink the
// whole import.
type document struct {
	Steps    []map[string]any `json:"steps"    yaml:"steps"`
	Products []map[string]any `json:"products" yaml:"products"`
}

// QuarantinedEntry records one rejected entry and why it was rejected.
type QuarantinedEntry struct {
	Kind   string `json:"kind"` // "step" or "product"
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Report is the outcome of an import pass.
type Report struct {
	Steps       []domain.Step
	Products    []domain.Product
	Quarantined []QuarantinedEntry
}

// Accepted returns the total number of entries that passed validation.
func (r *Report) Accepted() int {
	return len(r.Steps) + len(r.Products)
}

// Importer parses and validates bulk script documents.
type Importer struct {
	validate *validator.Validate
}

// New creates an Importer with the default validation rules.
func New() *Importer {
	return &Importer{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Parse decodes a document in the given format and validates every entry.
// It returns an error only when the document itself is unreadable;
// per-entry problems land in the report's quarantine list.
func (i *Importer) Parse(data []byte, format Format) (*Report, error) {
	var doc document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON document: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	report := &Report{}
	seenSteps := make(map[string]bool)
	seenProducts := make(map[string]bool)

	for idx, raw := range doc.Steps {
		var step domain.Step
		if err := decodeLoose(raw, &step); err != nil {
			report.quarantine("step", idx, idString(raw), "malformed entry: "+err.Error())
			continue
		}
		if err := i.validate.Struct(step); err != nil {
			report.quarantine("step", idx, step.ID, validationReason(err))
			continue
		}
		if seenSteps[step.ID] {
			report.quarantine("step", idx, step.ID, "duplicate step id")
			continue
		}
		seenSteps[step.ID] = true
		report.Steps = append(report.Steps, step)
	}

	for idx, raw := range doc.Products {
		var product domain.Product
		if err := decodeLoose(raw, &product); err != nil {
			report.quarantine("product", idx, idString(raw), "malformed entry: "+err.Error())
			continue
		}
		if err := i.validate.Struct(product); err != nil {
			report.quarantine("product", idx, product.ID, validationReason(err))
			continue
		}
		if seenProducts[product.ID] {
			report.quarantine("product", idx, product.ID, "duplicate product id")
			continue
		}
		seenProducts[product.ID] = true
		report.Products = append(report.Products, product)
	}

	return report, nil
}

func (r *Report) quarantine(kind string, idx int, id, reason string) {
	r.Quarantined = append(r.Quarantined, QuarantinedEntry{
		Kind:   kind,
		Index:  idx,
		ID:     id,
		Reason: reason,
	})
}

// decodeLoose maps a free-form entry onto a typed record, rejecting keys
// the schema does not know about.
func decodeLoose(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(normalizeNulls(raw))
}

// normalizeNulls rewrites explicit nulls to absent values so a button's
// "next_step_id": null decodes to the empty string (the terminal marker)
// instead of failing the decode.
func normalizeNulls(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			continue
		case map[string]any:
			out[k] = normalizeNulls(t)
		case []any:
			items := make([]any, 0, len(t))
			for _, item := range t {
				if m, ok := item.(map[string]any); ok {
					items = append(items, normalizeNulls(m))
				} else {
					items = append(items, item)
				}
			}
			out[k] = items
		default:
			out[k] = v
		}
	}
	return out
}

func idString(raw map[string]any) string {
	if id, ok := raw["id"].(string); ok {
		return id
	}
	return ""
}

func validationReason(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		reasons := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			reasons = append(reasons, fmt.Sprintf("field %s failed %q", fe.Field(), fe.Tag()))
		}
		return strings.Join(reasons, "; ")
	}
	return err.Error()
}
