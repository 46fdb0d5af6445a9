package layer

// Stack is the ordered sequence of layers. Paint order equals slice
// order: the last layer draws on top. ActiveID designates the layer
// editing tools operate on; it is empty only when the stack is empty.
type Stack struct {
	Layers   []*Layer `json:"layers"`
	ActiveID string   `json:"active_id"`
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// IndexOf returns the position of the layer with the given id, or -1.
func (s *Stack) IndexOf(id string) int {
	for i, l := range s.Layers {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the layer with the given id, or nil.
func (s *Stack) Get(id string) *Layer {
	if i := s.IndexOf(id); i >= 0 {
		return s.Layers[i]
	}
	return nil
}

// Active returns the active layer, or nil when the stack is empty.
func (s *Stack) Active() *Layer {
	return s.Get(s.ActiveID)
}

// Add appends a layer on top of the stack and makes it active.
func (s *Stack) Add(l *Layer) {
	s.Layers = append(s.Layers, l)
	s.ActiveID = l.ID
}

// Remove deletes the layer with the given id. When the active layer is
// removed, the topmost remaining layer becomes active.
func (s *Stack) Remove(id string) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	s.Layers = append(s.Layers[:i], s.Layers[i+1:]...)
	if s.ActiveID == id {
		s.ActiveID = ""
		if len(s.Layers) > 0 {
			s.ActiveID = s.Layers[len(s.Layers)-1].ID
		}
	}
	return true
}

// Move repositions the layer with the given id to index. Indices are
// clamped to the valid range.
func (s *Stack) Move(id string, index int) bool {
	i := s.IndexOf(id)
	if i < 0 {
		return false
	}
	if index < 0 {
		index = 0
	}
	if index >= len(s.Layers) {
		index = len(s.Layers) - 1
	}
	if index == i {
		return false
	}

	l := s.Layers[i]
	s.Layers = append(s.Layers[:i], s.Layers[i+1:]...)
	s.Layers = append(s.Layers[:index], append([]*Layer{l}, s.Layers[index:]...)...)
	return true
}

// Clone deep-copies the stack including every pixel buffer. This is the
// snapshot the history keeps.
func (s *Stack) Clone() *Stack {
	c := &Stack{
		Layers:   make([]*Layer, len(s.Layers)),
		ActiveID: s.ActiveID,
	}
	for i, l := range s.Layers {
		c.Layers[i] = l.Clone()
	}
	return c
}
