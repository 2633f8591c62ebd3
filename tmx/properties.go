package tmx

import "strconv"

// Property is a single custom property.
type Property struct {
	Name  string
	Type  string
	Value string
}

// Properties keeps custom properties in document order.
type Properties []Property

// Get returns the raw value of the named property.
func (p Properties) Get(name string) (string, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return "", false
}

func (p Properties) String(name, def string) string {
	if v, ok := p.Get(name); ok {
		return v
	}
	return def
}

func (p Properties) Int(name string, def int) int {
	if v, ok := p.Get(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func (p Properties) Float(name string, def float64) float64 {
	if v, ok := p.Get(name); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func (p Properties) Bool(name string, def bool) bool {
	if v, ok := p.Get(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
