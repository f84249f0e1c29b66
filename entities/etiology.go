package entities

// Triple is one flattened etiology: the category it was listed under, its
// normalized name and the optional frequency tag from the index
type Triple struct {
	Category  string
	Name      string
	Frequency string // empty when the index gives none
	RedFlag   bool
}

// HasFrequency reports whether the index carried a frequency tag
func (t Triple) HasFrequency() bool {
	return t.Frequency != ""
}
