package definition

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var ErrMalformedDefinition = errors.New("malformed survey definition")

// MalformedDefinitionError carries every structural problem found in a
// definition document. A survey with this error cannot be rendered.
type MalformedDefinitionError struct {
	Problems *multierror.Error
}

func (e *MalformedDefinitionError) Error() string {
	if e.Problems == nil || len(e.Problems.Errors) == 0 {
		return ErrMalformedDefinition.Error()
	}
	if len(e.Problems.Errors) == 1 {
		return fmt.Sprintf("%s: %s", ErrMalformedDefinition, e.Problems.Errors[0])
	}
	return fmt.Sprintf("%s: %d problems, first: %s", ErrMalformedDefinition, len(e.Problems.Errors), e.Problems.Errors[0])
}

func (e *MalformedDefinitionError) Is(target error) bool {
	return target == ErrMalformedDefinition
}

func (e *MalformedDefinitionError) Unwrap() error {
	if e.Problems == nil {
		return nil
	}
	return e.Problems.ErrorOrNil()
}

// Messages lists the problems one per entry, in document order.
func (e *MalformedDefinitionError) Messages() []string {
	if e.Problems == nil {
		return nil
	}
	msgs := make([]string, len(e.Problems.Errors))
	for i, p := range e.Problems.Errors {
		msgs[i] = p.Error()
	}
	return msgs
}

// NodeError pins a problem to the path of the offending node.
type NodeError struct {
	Path string
	Msg  string
}

func (e *NodeError) Error() string {
	return e.Path + ": " + e.Msg
}
