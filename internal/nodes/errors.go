package nodes

import "errors"

var (
	// ErrUnknownNodeType — a type tag does not match any registered factory.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrMissingFilepath — a file node was run without a file path.
	ErrMissingFilepath = errors.New("filepath is empty")

	// ErrMissingCommand — a process node was run without a command.
	ErrMissingCommand = errors.New("command is empty")

	// ErrMissingParamName — a cliparam node was run without a parameter name.
	ErrMissingParamName = errors.New("parameter name is empty")
)
