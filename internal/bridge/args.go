package bridge

import (
	"fmt"

	"github.com/web2native/bridge/internal/shared/types"
)

// bindArgs validates positional args against a command schema and binds them
// to param names. JSON numbers arrive as float64, strings as string, booleans
// as bool; anything else is a schema mismatch.
func bindArgs(cmd types.Command, args []interface{}) (map[string]interface{}, error) {
	if len(args) > len(cmd.Params) {
		return nil, fmt.Errorf("too many arguments: got %d, schema takes %d", len(args), len(cmd.Params))
	}

	bound := make(map[string]interface{}, len(args))
	for i, p := range cmd.Params {
		if i >= len(args) {
			if p.Required {
				return nil, fmt.Errorf("missing required argument %q at position %d", p.Name, i)
			}
			// Optional params may only trail required ones, so nothing
			// after this position can be required either.
			break
		}

		value := args[i]
		if value == nil {
			if p.Required {
				return nil, fmt.Errorf("argument %q must not be null", p.Name)
			}
			continue
		}

		switch p.Type {
		case types.ParamString:
			s, ok := value.(string)
			if !ok {
				return nil, typeMismatch(p, value)
			}
			bound[p.Name] = s
		case types.ParamNumber:
			f, ok := value.(float64)
			if !ok {
				return nil, typeMismatch(p, value)
			}
			bound[p.Name] = f
		case types.ParamBool:
			b, ok := value.(bool)
			if !ok {
				return nil, typeMismatch(p, value)
			}
			bound[p.Name] = b
		default:
			return nil, fmt.Errorf("argument %q has unsupported schema type %q", p.Name, p.Type)
		}
	}
	return bound, nil
}

func typeMismatch(p types.Param, value interface{}) error {
	return fmt.Errorf("argument %q must be %s, got %T", p.Name, p.Type, value)
}
