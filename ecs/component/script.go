package component

// Script runs a tengo script every frame. The script writes named values
// into Params, which other systems read (e.g. "strength" on magnets).
type Script struct {
	Path   string
	Params map[string]float64
}

func (s *Script) Param(name string, fallback float64) float64 {
	if s == nil || s.Params == nil {
		return fallback
	}
	v, ok := s.Params[name]
	if !ok {
		return fallback
	}
	return v
}

var ScriptComponent = NewComponent[Script]()
