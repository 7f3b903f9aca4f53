package domain

// AttendanceType distinguishes outbound from inbound calls.
type AttendanceType string

const (
	AttendanceAtivo     AttendanceType = "ativo"
	AttendanceReceptivo AttendanceType = "receptivo"
)

// Valid reports whether the value is a known attendance type.
func (a AttendanceType) Valid() bool {
	return a == AttendanceAtivo || a == AttendanceReceptivo
}

// PersonType distinguishes natural persons from legal entities.
type PersonType string

const (
	PersonFisica   PersonType = "fisica"
	PersonJuridica PersonType = "juridica"
)

// Valid reports whether the value is a known person type.
func (p PersonType) Valid() bool {
	return p == PersonFisica || p == PersonJuridica
}

// Product is a named script graph plus the eligibility filters that decide
// when it is offered to the operator.
type Product struct {
	ID   string `json:"id"   yaml:"id"   validate:"required"`
	Name string `json:"name" yaml:"name" validate:"required"`

	// ScriptID is the id of the Step that is the entry point of this
	// product's graph. It must resolve to a Step whose ProductID, when
	// set, matches this product.
	ScriptID string `json:"script_id" yaml:"script_id" validate:"required"`

	AttendanceTypes []AttendanceType `json:"attendance_types" yaml:"attendance_types" validate:"required,min=1,dive,oneof=ativo receptivo"`
	PersonTypes     []PersonType     `json:"person_types"     yaml:"person_types"     validate:"required,min=1,dive,oneof=fisica juridica"`

	IsActive bool `json:"is_active" yaml:"is_active"`
}

// Offers reports whether the product is eligible for the given selection.
func (p Product) Offers(at AttendanceType, pt PersonType) bool {
	if !p.IsActive {
		return false
	}
	return containsType(p.AttendanceTypes, at) && containsType(p.PersonTypes, pt)
}

func containsType[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
