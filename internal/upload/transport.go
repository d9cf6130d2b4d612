package upload

// BufferSizeChange describes a change of a transport's write budget.
type BufferSizeChange struct {
	TotalBufferSize int
	AvailableDelta  int
}

// Transport is a text sink with a write budget. Write must only be called
// with text no longer than AvailableWriteBufferSize.
type Transport interface {
	Write(text string) error
	AvailableWriteBufferSize() int
	OnAvailableWriteBufferSizeChange(fn func(BufferSizeChange)) (cancel func())
}
