package dao

// Parameter is a named List filter.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a filter; several values match any of them.
func NewParameter[V any](name string, values ...V) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
