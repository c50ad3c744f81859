package console

import "io"

// Renderer is the template engine contract the controller needs.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}
