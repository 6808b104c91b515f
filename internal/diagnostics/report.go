package diagnostics

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Section groups the diagnostics of one phase.
type Section struct {
	Phase  Phase
	Errors []*DiagnosticError
}

// Report is the ordered error report of one analysis: sections follow the
// pass order, errors keep the order their pass produced them in.
type Report struct {
	File     string
	Sections []Section
}

func NewReport(file string, errs []*DiagnosticError) *Report {
	ordered := make([]*DiagnosticError, len(errs))
	copy(ordered, errs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Phase() < ordered[j].Phase()
	})

	r := &Report{File: file}
	for _, err := range ordered {
		n := len(r.Sections)
		if n == 0 || r.Sections[n-1].Phase != err.Phase() {
			r.Sections = append(r.Sections, Section{Phase: err.Phase()})
			n++
		}
		r.Sections[n-1].Errors = append(r.Sections[n-1].Errors, err)
	}
	return r
}

func (r *Report) Empty() bool {
	return len(r.Sections) == 0
}

// Errors returns every error in report order.
func (r *Report) Errors() []*DiagnosticError {
	var out []*DiagnosticError
	for _, s := range r.Sections {
		out = append(out, s.Errors...)
	}
	return out
}

type yamlError struct {
	Code      string `yaml:"code"`
	Line      int    `yaml:"line,omitempty"`
	Column    int    `yaml:"column,omitempty"`
	Class     string `yaml:"class,omitempty"`
	Method    string `yaml:"method,omitempty"`
	Attribute string `yaml:"attribute,omitempty"`
	Message   string `yaml:"message"`
}

type yamlSection struct {
	Phase  string      `yaml:"phase"`
	Errors []yamlError `yaml:"errors"`
}

type yamlReport struct {
	File     string        `yaml:"file,omitempty"`
	Sections []yamlSection `yaml:"sections"`
}

// YAML encodes the report for machine consumption.
func (r *Report) YAML() ([]byte, error) {
	out := yamlReport{File: r.File, Sections: []yamlSection{}}
	for _, s := range r.Sections {
		ys := yamlSection{Phase: s.Phase.String()}
		for _, e := range s.Errors {
			ys.Errors = append(ys.Errors, yamlError{
				Code:      string(e.Code),
				Line:      e.Token.Line,
				Column:    e.Token.Column,
				Class:     e.Class,
				Method:    e.Method,
				Attribute: e.Attribute,
				Message:   e.Message,
			})
		}
		out.Sections = append(out.Sections, ys)
	}
	return yaml.Marshal(out)
}
