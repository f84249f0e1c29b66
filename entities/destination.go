package entities

// Destination is where the document of a presentation is written
type Destination struct {
	Presentation Presentation
	Slug         string
	Path         string
	LowPriority  bool // resolved from the list entry or the profile
}
