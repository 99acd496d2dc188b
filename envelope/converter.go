package envelope

import "github.com/hedisam/goenvelope/response"

// Converter packs a message and an optional response sender into an Envelope.
// Each execution-context flavor provides its own converters so the packing
// strategy can differ while senders only ever see Envelope[A, C].
type Converter[A, C, M, R any] interface {
	Pack(msg M, tx *response.Sender[R]) Envelope[A, C]
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc[A, C, M, R any] func(msg M, tx *response.Sender[R]) Envelope[A, C]

func (f ConverterFunc[A, C, M, R]) Pack(msg M, tx *response.Sender[R]) Envelope[A, C] {
	return f(msg, tx)
}

// Async returns the converter for contexts that can drive deferred results.
func Async[A any, C Scheduler, M, R any](h Handler[A, C, M, R]) Converter[A, C, M, R] {
	return ConverterFunc[A, C, M, R](func(msg M, tx *response.Sender[R]) Envelope[A, C] {
		return New(h, msg, tx)
	})
}

// Sync returns the converter for contexts that only run immediate handlers.
func Sync[A, C, M, R any](h SyncHandler[A, C, M, R]) Converter[A, C, M, R] {
	return ConverterFunc[A, C, M, R](func(msg M, tx *response.Sender[R]) Envelope[A, C] {
		return NewSync(h, msg, tx)
	})
}
