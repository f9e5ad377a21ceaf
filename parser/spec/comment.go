package spec

// Comment is https:domspec.whatwg.org/#interface-comment
type Comment struct {
	*CharacterData
}

// NewCommentData returns comment data with its Data section filled.
func NewCommentData(data string) *Comment {
	return &Comment{
		CharacterData: &CharacterData{
			Data:   data,
			Length: len(data),
		},
	}
}
