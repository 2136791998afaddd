package compute

import (
	"fmt"
	"regexp"
)

var placeholder = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_.]*\}`)

// EvalStr expands the {identifier} placeholders of a template. Literal text and placeholder
// values are joined left to right; see Join for the combination rules. The result is a Str
// unless a placeholder expanded to more than one element, in which case it is a StrVector.
func (e *Evaluator) EvalStr(template string, collect *Collect) (Result, error) {
	var acc Result = Empty{}
	var err error
	multi := false

	cursor := 0
	for _, loc := range placeholder.FindAllStringIndex(template, -1) {
		acc, err = joinLiteral(acc, template[cursor:loc[0]])
		if err != nil {
			return nil, err
		}
		cursor = loc[1]

		name := template[loc[0]+1 : loc[1]-1]
		value, found := collect.Lookup(name)
		if !found {
			if e.Strict {
				return nil, fmt.Errorf("%w: %s in template %q", ErrUnknownMetric, name, template)
			}

			log.Debug("placeholder not found, skipping", "identifier", name, "template", template)
			continue
		}
		size := elements(value)
		if size == 0 {
			log.Debug("placeholder expanded to no element, skipping", "identifier", name, "template", template)
			continue
		}
		if size > 1 {
			multi = true
		}

		acc, err = Join(acc, value)
		if err != nil {
			return nil, fmt.Errorf("%w in template %q", err, template)
		}
	}

	acc, err = joinLiteral(acc, template[cursor:])
	if err != nil {
		return nil, err
	}

	return collapse(acc, multi), nil
}

func joinLiteral(acc Result, literal string) (Result, error) {
	if len(literal) == 0 {
		return acc, nil
	}

	return Join(acc, Str(literal))
}

func elements(value Result) int {
	switch v := value.(type) {
	case Vector:
		return len(v)
	case StrVector:
		return len(v)
	default:
		return 1
	}
}

func collapse(acc Result, multi bool) Result {
	switch a := acc.(type) {
	case Empty:
		return Str("")
	case StrVector:
		if multi {
			return a
		}
		if len(a) == 0 {
			return Str("")
		}
		return Str(a[0])
	default:
		return acc
	}
}
