package core

import "fmt"

// AccessError is returned when the catalog layer fails to list or cache
// the children of an object.
type AccessError struct {
	Op     string // operation, e.g. "list children"
	Object string // name of the object being accessed
	Err    error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("catalog %s %q: %v", e.Op, e.Object, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}
