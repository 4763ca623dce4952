package models

// FieldType identifies how a field's value is typed and coerced
type FieldType string

const (
	FieldCurrency FieldType = "currency"
	FieldInteger  FieldType = "integer"
	FieldPercent  FieldType = "percent"
	FieldEnum     FieldType = "enum"
	FieldBoolean  FieldType = "boolean"
)

// Valid reports whether ft is one of the known field types
func (ft FieldType) Valid() bool {
	switch ft {
	case FieldCurrency, FieldInteger, FieldPercent, FieldEnum, FieldBoolean:
		return true
	}
	return false
}

// Condition gates a field's or group's visibility on another field's value
type Condition struct {
	Field  string      `json:"field"`
	Equals interface{} `json:"equals"`
}

// Field describes one wizard input
type Field struct {
	Key       string      `json:"key"`
	Label     string      `json:"label"`
	Type      FieldType   `json:"type"`
	Default   interface{} `json:"default,omitempty"`
	Choices   []string    `json:"choices,omitempty"` // enum types only
	Tooltip   string      `json:"tooltip,omitempty"`
	Min       *float64    `json:"min,omitempty"`
	Max       *float64    `json:"max,omitempty"`
	Condition *Condition  `json:"condition,omitempty"`
}

// Group is an ordered set of fields presented together
type Group struct {
	Name      string     `json:"name"`
	Label     string     `json:"label,omitempty"`
	Condition *Condition `json:"condition,omitempty"`
	Fields    []Field    `json:"fields"`
}

// Schema is the base schema document
type Schema struct {
	Groups   []Group        `json:"groups"`
	Lookups  *RateTables    `json:"lookups,omitempty"`
	Settings *SettingsPatch `json:"settings,omitempty"`
}

// DirectiveAction is an overlay merge operation
type DirectiveAction string

const (
	ActionReplaceField DirectiveAction = "replace-field"
	ActionAppendField  DirectiveAction = "append-field"
	ActionAddGroup     DirectiveAction = "add-group"
)

// Valid reports whether a is a known directive action
func (a DirectiveAction) Valid() bool {
	switch a {
	case ActionReplaceField, ActionAppendField, ActionAddGroup:
		return true
	}
	return false
}

// Directive is one overlay merge instruction. Target names the group the
// directive operates on; field payloads carry their own key.
type Directive struct {
	Action DirectiveAction `json:"action"`
	Target string          `json:"target"`
	Field  *Field          `json:"field,omitempty"`
	Group  *Group          `json:"group,omitempty"`
}

// Overlay amends a base schema via an ordered list of directives.
// Lookup entries, when present, override the base tables per key.
type Overlay struct {
	Directives []Directive    `json:"directives"`
	Lookups    *RateTables    `json:"lookups,omitempty"`
	Settings   *SettingsPatch `json:"settings,omitempty"`
}

// ResolvedSchema is the merge result consumed by the rest of the system.
// Group and field order is significant; field keys are unique.
type ResolvedSchema struct {
	Groups   []Group    `json:"groups"`
	Lookups  RateTables `json:"lookups"`
	Settings Settings   `json:"settings"`
}

// FieldByKey looks up a field definition anywhere in the resolved schema
func (rs *ResolvedSchema) FieldByKey(key string) (Field, bool) {
	for _, g := range rs.Groups {
		for _, f := range g.Fields {
			if f.Key == key {
				return f, true
			}
		}
	}
	return Field{}, false
}

// Fields returns all fields in group order
func (rs *ResolvedSchema) Fields() []Field {
	var out []Field
	for _, g := range rs.Groups {
		out = append(out, g.Fields...)
	}
	return out
}
