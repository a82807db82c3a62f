package flashcard

// Source is the provenance a position tag resolves to.
type Source struct {
	Tag        int    `json:"tag"`
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
}

// Attributed is a card joined with the retrieved chunk it came from.
type Attributed struct {
	Card
	Source *Source `json:"source,omitempty"`
}

// Attribute matches each card's source tag against the position tags of the
// retrieval that built the prompt. Unmatched tags leave Source nil.
func Attribute(cards []Card, sources []Source) []Attributed {
	byTag := make(map[int]Source, len(sources))
	for _, s := range sources {
		byTag[s.Tag] = s
	}
	out := make([]Attributed, len(cards))
	for i, c := range cards {
		out[i] = Attributed{Card: c}
		if c.SourceTag == nil {
			continue
		}
		if s, ok := byTag[*c.SourceTag]; ok {
			src := s
			out[i].Source = &src
		}
	}
	return out
}
