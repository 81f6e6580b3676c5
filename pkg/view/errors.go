package view

import "errors"

var (
	ErrNotFound    = errors.New("view: template not found")
	ErrParse       = errors.New("view: failed to parse template")
	ErrRender      = errors.New("view: failed to render template")
	ErrInvalidName = errors.New("view: invalid template name")
	ErrNoEngine    = errors.New("view: no engine configured")

	ErrIncludeDepth = errors.New("view: include nested too deeply")
)
