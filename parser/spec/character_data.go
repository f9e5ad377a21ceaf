package spec

// CharacterData is https:domspec.whatwg.org/#characterdata
type CharacterData struct {
	Data   string
	Length int
}

func (c *CharacterData) AppendData(data string) {
	c.Data += data
	c.Length = len(c.Data)
}

func (c *CharacterData) ReplaceData(data string) {
	c.Data = data
	c.Length = len(data)
}
