package catalog

import "github.com/vango-dev/choicegroup/pkg/choice"

// Snapshot is the JSON view of an entry.
type Snapshot struct {
	Name       string          `json:"name"`
	Mode       string          `json:"mode"`
	Value      any             `json:"value"`
	Serialized any             `json:"serializedValue"`
	Feedback   choice.Feedback `json:"feedback,omitempty"`
	Disabled   bool            `json:"disabled"`
	ReadOnly   bool            `json:"readOnly"`
	Members    []Member        `json:"members"`

	// Select only.
	Opened      *bool `json:"opened,omitempty"`
	ActiveIndex *int  `json:"activeIndex,omitempty"`
}

// Member is the JSON view of one element.
type Member struct {
	Index    int    `json:"index"`
	Value    any    `json:"value"`
	Label    string `json:"label,omitempty"`
	Checked  bool   `json:"checked"`
	Disabled bool   `json:"disabled"`
}

// Snapshot captures the entry's state. Call it inside Do.
func (e *Entry) Snapshot() Snapshot {
	g := e.group
	s := Snapshot{
		Name:       e.name,
		Mode:       e.kind,
		Value:      g.ModelValue(),
		Serialized: g.SerializedValue(),
		Feedback:   g.Feedback(),
		Disabled:   g.Disabled(),
		ReadOnly:   g.ReadOnly(),
	}
	if choice.IsUnchecked(s.Value) {
		s.Value = nil
	}
	members := g.Members()
	s.Members = make([]Member, len(members))
	for i, m := range members {
		s.Members[i] = Member{
			Index:    i,
			Value:    m.Value(),
			Label:    m.Label(),
			Checked:  m.Checked(),
			Disabled: m.Disabled(),
		}
	}
	if e.sel != nil {
		opened, active := e.sel.Opened(), e.sel.ActiveIndex()
		s.Opened, s.ActiveIndex = &opened, &active
	}
	return s
}
