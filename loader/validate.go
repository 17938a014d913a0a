package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/adriftcore/engine/parser"
	"github.com/nathoo/adriftcore/engine/props"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Variable types as stored in the story.
const (
	varInteger = 0
	varString  = 1
)

// Event starter types.
const (
	starterTurns  = 1
	starterRandom = 2
	starterTask   = 3
)

// validate checks the loaded story for references a running game would
// trip over. Errors stop the load; warnings are kept on the story.
func validate(story *Story) error {
	s := story.Props
	ve := &ValidationError{}
	rooms := s.Count("Rooms")
	objects := s.Count("Objects")
	tasks := s.Count("Tasks")

	if rooms == 0 {
		ve.Errors = append(ve.Errors, "story has no rooms")
	} else if start := s.Int("Header", "StartRoom"); start < 0 || start >= rooms {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"start room %d out of range (0..%d)", start, rooms-1))
	}

	// Exit destinations are stored one-based.
	for room := 0; room < rooms; room++ {
		for dir := 0; dir < directions; dir++ {
			if !s.Has("Rooms", room, "Exits", dir) {
				continue
			}
			if dest := s.Int("Rooms", room, "Exits", dir, "Dest"); dest < 1 || dest > rooms {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"room %d exit %d leads to undefined room %d", room, dir, dest-1))
			}
		}
	}

	for obj := 0; obj < objects; obj++ {
		if s.Bool("Objects", obj, "Static") {
			continue
		}
		if pos := s.Int("Objects", obj, "InitialPosition"); pos < 0 || pos > rooms+4 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"object %q has unknown initial position %d", s.String("Objects", obj, "Short"), pos))
		}
	}

	for v := 0; v < s.Count("Variables"); v++ {
		name := s.String("Variables", v, "Name")
		if name == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("variable %d has no name", v))
		}
		if typ := s.Int("Variables", v, "Type"); typ != varInteger && typ != varString {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"variable %q has unknown type %d", name, typ))
		}
	}

	for event := 0; event < s.Count("Events"); event++ {
		switch typ := s.Int("Events", event, "StarterType"); typ {
		case starterTurns, starterRandom:
		case starterTask:
			if n := s.Int("Events", event, "TaskNum"); n < 1 || n > tasks {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf(
					"event %q waits on undefined task %d", s.String("Events", event, "Short"), n-1))
			}
		default:
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"event %q has unknown starter type %d", s.String("Events", event, "Short"), typ))
		}
	}

	for task := 0; task < tasks; task++ {
		validateTask(s, task, ve)
	}

	story.Warnings = append(story.Warnings, ve.Warnings...)
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateTask warns on command patterns that never match and checks the
// restriction mask against the restriction count.
func validateTask(s *props.Store, task int, ve *ValidationError) {
	for _, key := range []string{"Command", "ReverseCommand"} {
		for c := 0; c < s.Count("Tasks", task, key); c++ {
			if _, err := parser.Compile(s.String("Tasks", task, key, c)); err != nil {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf("task %d: %v", task, err))
			}
		}
	}

	restrictions := s.Count("Tasks", task, "Restrictions")
	mask := s.String("Tasks", task, "RestrMask")
	if restrictions > 0 && strings.Count(mask, "#") != restrictions {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"task %d: restriction mask %q does not cover %d restriction(s)", task, mask, restrictions))
	}
}
