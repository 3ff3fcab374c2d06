package analytics

// State distinguishes a result that is not there yet from one that could not
// be produced and from one that was computed (possibly all zeros).
type State string

const (
	StateLoading     State = "loading"
	StateUnavailable State = "unavailable"
	StateReady       State = "ready"
)

// View wraps a report for the presentation layer. Data is only set when
// State is StateReady.
type View[T any] struct {
	State State  `json:"state"`
	Data  *T     `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Loading returns a view with no data yet.
func Loading[T any]() View[T] {
	return View[T]{State: StateLoading}
}

// Ready wraps a computed report.
func Ready[T any](data *T) View[T] {
	return View[T]{State: StateReady, Data: data}
}

// Unavailable records why no report could be computed.
func Unavailable[T any](err error) View[T] {
	v := View[T]{State: StateUnavailable}
	if err != nil {
		v.Error = err.Error()
	}
	return v
}

// IsReady reports whether the view carries a computed report.
func (v View[T]) IsReady() bool {
	return v.State == StateReady && v.Data != nil
}
