package bind_group_provider

// BufferWrite describes a single queued upload into the buffer bound at Binding on Provider,
// starting at Offset bytes.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
