/*
Package render substitutes call-scoped placeholder tokens into step content.

Substitution is the renderer's job, never the navigation session's: step
content flows through the engine verbatim so scripts stay reusable and
testable independent of any particular call's customer data.
*/
package render

import "strings"

// Placeholder tokens recognized in step content. The literal bracket
// spelling is part of the script authoring contract and is not localized.
const (
	TokenOperatorName      = "[Nome do operador]"
	TokenCustomerFirstName = "[Primeiro nome do cliente]"
	TokenCustomerFullName  = "[Nome completo do cliente]"
	TokenCustomerCPF       = "[CPF do cliente]"
)

// Defaults used when the operator has not supplied customer data yet.
const (
	defaultCustomerName = "Cliente"
	maskedCPF           = "___.___.___-__"
)

// CallData carries the per-call values substituted into step content.
type CallData struct {
	// OperatorName is the operator's full name; only the first
	// whitespace-delimited token is substituted.
	OperatorName string

	// CustomerName is operator-supplied free text for the customer's
	// full name. May be empty early in a call.
	CustomerName string

	// CustomerCPF is never rendered in full; the token always resolves
	// to a masked placeholder.
	CustomerCPF string
}

// Substitute replaces every placeholder token in content with the values
// from data, falling back to neutral defaults for absent values.
func Substitute(content string, data CallData) string {
	r := strings.NewReplacer(
		TokenOperatorName, firstName(data.OperatorName, "Operador"),
		TokenCustomerFirstName, firstName(data.CustomerName, defaultCustomerName),
		TokenCustomerFullName, fullName(data.CustomerName),
		TokenCustomerCPF, maskedCPF,
	)
	return r.Replace(content)
}

func firstName(full, fallback string) string {
	fields := strings.Fields(full)
	if len(fields) == 0 {
		return fallback
	}
	return fields[0]
}

func fullName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultCustomerName
	}
	return name
}
