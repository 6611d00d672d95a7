package loader

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ValidationError collects all errors and warnings found after the
// scripts have run.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate adds the warnings that need the whole story, logs every
// warning, and returns s.ve if any errors were found.
func validate(s *session) error {
	ve := s.ve

	// Terms declared in Lua but never attached to a rule, path, or object.
	for _, name := range s.terms {
		if t, ok := s.b.LookupTerm(name); ok && !s.used[t] {
			s.warnf("term %q is not used by any rule, path, or object", name)
		}
	}

	if s.b.Engine().World.Player == nil {
		s.warnf("no player defined")
	}
	if len(s.rules) == 0 {
		s.warnf("no rules defined")
	}

	for _, w := range ve.Warnings {
		s.log.Warn("story warning", zap.String("warning", w))
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
