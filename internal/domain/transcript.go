package domain

import (
	"fmt"
	"slices"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleModel    Role = "model"
	RoleFunction Role = "function"
)

type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// StringArg returns the named argument when the model sent it as a string.
func (c FunctionCall) StringArg(name string) string {
	v, ok := c.Args[name]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Sprint(v)
	}
	return s
}

type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Result returns the "result" field every tool response carries.
func (r FunctionResponse) Result() string {
	v, _ := r.Response["result"].(string)
	return v
}

// Part holds exactly one of Text, FunctionCall or FunctionResponse.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func CallPart(call FunctionCall) Part {
	return Part{FunctionCall: &call}
}

func ResponsePart(name, result string) Part {
	return Part{FunctionResponse: &FunctionResponse{
		Name:     name,
		Response: map[string]any{"result": result},
	}}
}

type Turn struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

func UserText(text string) Turn {
	return Turn{Role: RoleUser, Parts: []Part{TextPart(text)}}
}

func ModelText(text string) Turn {
	return Turn{Role: RoleModel, Parts: []Part{TextPart(text)}}
}

func ModelCall(call FunctionCall) Turn {
	return Turn{Role: RoleModel, Parts: []Part{CallPart(call)}}
}

func FunctionResult(parts ...Part) Turn {
	return Turn{Role: RoleFunction, Parts: parts}
}

// Transcript is append-only: Append never touches the receiver's backing
// array, so a committed transcript stays valid while a working copy grows.
type Transcript []Turn

func (t Transcript) Append(turns ...Turn) Transcript {
	out := make(Transcript, 0, len(t)+len(turns))
	out = append(out, t...)
	return append(out, turns...)
}

func (t Transcript) Clone() Transcript {
	return slices.Clone(t)
}

func (t Transcript) Len() int {
	return len(t)
}

// Validate checks that every function turn directly follows a model turn
// calling the same function.
func (t Transcript) Validate() error {
	for i, turn := range t {
		switch turn.Role {
		case RoleUser, RoleModel:
		case RoleFunction:
			if i == 0 {
				return fmt.Errorf("turn %d: function turn without preceding call", i)
			}
			call := t[i-1].functionCall()
			if t[i-1].Role != RoleModel || call == nil {
				return fmt.Errorf("turn %d: function turn must follow a model function call", i)
			}
			for _, part := range turn.Parts {
				if part.FunctionResponse == nil {
					return fmt.Errorf("turn %d: function turn carries a non-response part", i)
				}
				if part.FunctionResponse.Name != call.Name {
					return fmt.Errorf("turn %d: response %q does not match call %q", i, part.FunctionResponse.Name, call.Name)
				}
			}
		default:
			return fmt.Errorf("turn %d: unknown role %q", i, turn.Role)
		}
	}

	return nil
}

func (t Turn) functionCall() *FunctionCall {
	for _, part := range t.Parts {
		if part.FunctionCall != nil {
			return part.FunctionCall
		}
	}
	return nil
}
