package step

// Kind tells the interceptor how to treat a library method.
type Kind int

const (
	// KindHelper methods are called straight through and never reported.
	KindHelper Kind = iota
	// KindStep methods are reported as one step each.
	KindStep
	// KindGroup methods report the steps they call as children of one record.
	KindGroup
)

// Mode marks a step as not meant to run.
type Mode int

const (
	ModeNormal Mode = iota
	ModePending
	ModeIgnored
)

// Tag is the declaration attached to a step library method.
type Tag struct {
	Kind        Kind
	Mode        Mode
	Description string
}

// Step declares a reported step. The description may reference call arguments as {0}, {1}...
func Step(description string) Tag {
	return Tag{Kind: KindStep, Description: description}
}

// Group declares a method whose steps are reported as one group.
func Group(description string) Tag {
	return Tag{Kind: KindGroup, Description: description}
}

// Pending marks the step as not implemented yet. Its body never runs.
func (t Tag) Pending() Tag {
	t.Mode = ModePending
	return t
}

// Ignored marks the step as deliberately disabled. Its body never runs.
func (t Tag) Ignored() Tag {
	t.Mode = ModeIgnored
	return t
}

// Tagged is implemented by step libraries. Methods missing from the map are helpers.
type Tagged interface {
	StepTags() map[string]Tag
}
