package normalize

// FieldState tracks how a required field obtained its value.
type FieldState string

// Field states. A field starts Missing, may be Inferred from free text, and
// ends Validated or Defaulted.
const (
	StateMissing   FieldState = "missing"
	StateInferred  FieldState = "inferred"
	StateValidated FieldState = "validated"
	StateDefaulted FieldState = "defaulted"
)

// Tracked field names.
const (
	FieldName    = "name"
	FieldBrand   = "brand"
	FieldPhone   = "phone"
	FieldAddress = "address"
	FieldEmail   = "email"
	FieldCity    = "city"
	FieldHours   = "hours"
	FieldMenu    = "menu"
)

// FieldStates records the final state of every tracked field.
type FieldStates map[string]FieldState

func newFieldStates(f Fields) FieldStates {
	states := FieldStates{}
	set := func(name, v string) {
		if v == "" {
			states[name] = StateMissing
		} else {
			states[name] = StateValidated
		}
	}
	set(FieldName, f.Name)
	set(FieldBrand, f.Brand)
	set(FieldPhone, f.Phone)
	set(FieldAddress, f.Address)
	set(FieldEmail, f.Email)
	set(FieldCity, f.City)
	states[FieldHours] = StateMissing
	if len(f.Hours) > 0 {
		states[FieldHours] = StateValidated
	}
	states[FieldMenu] = StateMissing
	if len(f.Menu) > 0 {
		states[FieldMenu] = StateValidated
	}
	return states
}

// infer moves a Missing field to Inferred. Other transitions are ignored.
func (s FieldStates) infer(field string) {
	if s[field] == StateMissing {
		s[field] = StateInferred
	}
}

// settle resolves Inferred and Validated fields against their final value:
// empty values fall back to Missing.
func (s FieldStates) settle(field, value string) {
	switch {
	case value == "":
		s[field] = StateMissing
	case s[field] == StateInferred || s[field] == StateMissing:
		s[field] = StateValidated
	}
}

func (s FieldStates) defaulted(field string) {
	s[field] = StateDefaulted
}
