package envutil

// Option is a function which modifies a Reader.
type Option[T any] func(Reader[T]) Reader[T]

// Default provides a value for a missing variable.
func Default[T any](dfl T) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return rdr.WithDefault(dfl)
	}
}

// Validate runs f on the value; a non-nil result becomes the Reader's error.
func Validate[T any](f func(T) error) Option[T] {
	return func(rdr Reader[T]) Reader[T] {
		return Map(rdr, func(val T) (T, error) {
			return val, f(val)
		})
	}
}
