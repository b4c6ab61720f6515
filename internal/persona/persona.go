// Package persona loads agent personas: the roster descriptor that lists every
// coordination role, and the per-agent descriptor holding its behavioural
// metadata (focus areas, responsibilities, escalation policy and so on).
//
// Optional persona fields are always normalised to empty containers so that
// consumers never need to branch on absence.
package persona

import (
	"fmt"

	"github.com/dyluth/muster/internal/descriptor"
)

// Descriptor keys, in projection order.
const (
	FieldID                 = "id"
	FieldName               = "name"
	FieldDescription        = "description"
	FieldMissionFocus       = "mission_focus"
	FieldResponsibilities   = "responsibilities"
	FieldCommunicationStyle = "communication_style"
	FieldCollaboratesWith   = "collaborates_with"
	FieldHandOffProtocol    = "hand_off_protocol"
	FieldMessageTemplates   = "message_templates"
	FieldSuccessMetrics     = "success_metrics"
	FieldEscalationPolicy   = "escalation_policy"
	FieldTools              = "tools"
)

type fieldShape int

const (
	shapeSequence fieldShape = iota
	shapeMapping
)

// optionalFields lists the structured fields that default to an empty container.
var optionalFields = []struct {
	key   string
	shape fieldShape
}{
	{FieldMissionFocus, shapeSequence},
	{FieldResponsibilities, shapeMapping},
	{FieldCommunicationStyle, shapeMapping},
	{FieldCollaboratesWith, shapeSequence},
	{FieldHandOffProtocol, shapeSequence},
	{FieldMessageTemplates, shapeMapping},
	{FieldSuccessMetrics, shapeSequence},
	{FieldEscalationPolicy, shapeSequence},
	{FieldTools, shapeSequence},
}

// AgentPersona is the identity and behaviour contract for one coordination role.
// Instances are built once by LoadPersona and not mutated afterwards.
type AgentPersona struct {
	ID          string
	Name        string
	Description string

	// MissionFocus is ordered; the first two entries feed standup prompts.
	MissionFocus []string

	// Responsibilities maps a category to an ordered list of responsibilities.
	Responsibilities *descriptor.Map

	// CommunicationStyle has no fixed schema.
	CommunicationStyle *descriptor.Map

	// CollaboratesWith holds other agent ids. They are not validated at load time.
	CollaboratesWith []string

	HandOffProtocol  []string
	MessageTemplates *descriptor.Map
	SuccessMetrics   []string
	EscalationPolicy []string

	// Tools is a list of schema-free tool descriptors.
	Tools []*descriptor.Map
}

// LoadPersona reads the persona descriptor at path for the given roster entry.
// id and name fall back to the roster entry only when the descriptor omits them.
func LoadPersona(path string, entry RosterEntry) (*AgentPersona, error) {
	raw, err := descriptor.Load(path)
	if err != nil {
		return nil, err
	}
	if raw.Len() == 0 {
		return nil, &descriptor.EmptyDescriptorError{Path: path}
	}

	data := raw.Clone()
	data.SetDefault(FieldID, entry.ID)
	if entry.Name != "" {
		data.SetDefault(FieldName, entry.Name)
	}
	data.SetDefault(FieldDescription, "")
	for _, f := range optionalFields {
		if f.shape == shapeMapping {
			data.SetDefault(f.key, descriptor.NewMap())
		} else {
			data.SetDefault(f.key, []any{})
		}
	}

	p := &AgentPersona{
		ID:               data.String(FieldID),
		Name:             data.String(FieldName),
		Description:      data.String(FieldDescription),
		MissionFocus:     data.Strings(FieldMissionFocus),
		CollaboratesWith: data.Strings(FieldCollaboratesWith),
		HandOffProtocol:  data.Strings(FieldHandOffProtocol),
		SuccessMetrics:   data.Strings(FieldSuccessMetrics),
		EscalationPolicy: data.Strings(FieldEscalationPolicy),
	}
	if p.Name == "" {
		p.Name = p.ID
	}

	if p.ID == "" {
		return nil, &descriptor.MalformedDescriptorError{Path: path, Reason: "persona id is empty"}
	}
	if p.ID != entry.ID {
		return nil, &descriptor.MalformedDescriptorError{
			Path:   path,
			Reason: fmt.Sprintf("persona id '%s' does not match roster id '%s'", p.ID, entry.ID),
		}
	}

	if p.Responsibilities, err = mappingField(path, data, FieldResponsibilities); err != nil {
		return nil, err
	}
	if p.CommunicationStyle, err = mappingField(path, data, FieldCommunicationStyle); err != nil {
		return nil, err
	}
	if p.MessageTemplates, err = mappingField(path, data, FieldMessageTemplates); err != nil {
		return nil, err
	}
	if p.Tools, err = toolsField(path, data); err != nil {
		return nil, err
	}

	return p, nil
}

// ToMap projects the persona back to a descriptor mapping with a fixed key order.
// Every field is present, including defaults filled in at load time.
func (p *AgentPersona) ToMap() *descriptor.Map {
	m := descriptor.NewMap()
	m.Set(FieldID, p.ID)
	m.Set(FieldName, p.Name)
	m.Set(FieldDescription, p.Description)
	m.Set(FieldMissionFocus, toSeq(p.MissionFocus))
	m.Set(FieldResponsibilities, orEmpty(p.Responsibilities))
	m.Set(FieldCommunicationStyle, orEmpty(p.CommunicationStyle))
	m.Set(FieldCollaboratesWith, toSeq(p.CollaboratesWith))
	m.Set(FieldHandOffProtocol, toSeq(p.HandOffProtocol))
	m.Set(FieldMessageTemplates, orEmpty(p.MessageTemplates))
	m.Set(FieldSuccessMetrics, toSeq(p.SuccessMetrics))
	m.Set(FieldEscalationPolicy, toSeq(p.EscalationPolicy))

	tools := make([]any, 0, len(p.Tools))
	for _, t := range p.Tools {
		tools = append(tools, orEmpty(t))
	}
	m.Set(FieldTools, tools)
	return m
}

// ResponsibilitiesFor returns the responsibilities listed under category.
func (p *AgentPersona) ResponsibilitiesFor(category string) []string {
	return orEmpty(p.Responsibilities).Strings(category)
}

// MessageTemplate returns the named template, or "" when undefined.
func (p *AgentPersona) MessageTemplate(name string) string {
	return orEmpty(p.MessageTemplates).String(name)
}

func mappingField(path string, data *descriptor.Map, key string) (*descriptor.Map, error) {
	v, _ := data.Get(key)
	m, ok := v.(*descriptor.Map)
	if !ok {
		return nil, &descriptor.MalformedDescriptorError{
			Path:   path,
			Reason: fmt.Sprintf("field '%s' must be a mapping", key),
		}
	}
	return m, nil
}

// toolsField accepts a sequence of mappings; a bare string item becomes {name: item}.
func toolsField(path string, data *descriptor.Map) ([]*descriptor.Map, error) {
	v, _ := data.Get(FieldTools)
	seq, ok := v.([]any)
	if !ok {
		return nil, &descriptor.MalformedDescriptorError{
			Path:   path,
			Reason: fmt.Sprintf("field '%s' must be a sequence", FieldTools),
		}
	}
	tools := make([]*descriptor.Map, 0, len(seq))
	for i, item := range seq {
		switch t := item.(type) {
		case *descriptor.Map:
			tools = append(tools, t)
		case string:
			named := descriptor.NewMap()
			named.Set("name", t)
			tools = append(tools, named)
		default:
			return nil, &descriptor.MalformedDescriptorError{
				Path:   path,
				Reason: fmt.Sprintf("tools[%d] must be a mapping", i),
			}
		}
	}
	return tools, nil
}

func toSeq(items []string) []any {
	out := make([]any, 0, len(items))
	for _, s := range items {
		out = append(out, s)
	}
	return out
}

func orEmpty(m *descriptor.Map) *descriptor.Map {
	if m == nil {
		return descriptor.NewMap()
	}
	return m
}
