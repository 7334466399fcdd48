// Package commands is the table of named operations the GUI can invoke.
//
// A Registry is built once with its full command set and is read-only
// afterwards. Dispatch turns a Request into a Response and never fails:
// every error is reported as a tagged {kind, message} payload.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	gitlyerrors "gitly.dev/gitly/internal/errors"
)

// Handler runs one command with its raw JSON arguments
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Command binds a name to a handler
type Command struct {
	Name    string
	Handler Handler
}

// Request is one invocation from the GUI
type Request struct {
	ID      string          `json:"id"`
	Command string          `json:"command"`
	Args    json.RawMessage `json:"args,omitempty"`
}

// ErrorPayload is the serialized form of a failed command
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response answers the Request with the same ID
type Response struct {
	ID      string        `json:"id"`
	OK      bool          `json:"ok"`
	Payload any           `json:"payload,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// Registry maps command names to handlers
type Registry struct {
	commands map[string]Handler
}

// NewRegistry builds a registry from cmds. It panics on an empty name, a nil
// handler or a duplicate name since those are programming errors.
func NewRegistry(cmds ...Command) *Registry {
	r := &Registry{commands: make(map[string]Handler, len(cmds))}
	for _, cmd := range cmds {
		if cmd.Name == "" {
			panic("commands: command with empty name")
		}
		if cmd.Handler == nil {
			panic(fmt.Sprintf("commands: command %q has no handler", cmd.Name))
		}
		if _, exists := r.commands[cmd.Name]; exists {
			panic(fmt.Sprintf("commands: duplicate command %q", cmd.Name))
		}
		r.commands[cmd.Name] = cmd.Handler
	}
	return r
}

// Names returns the registered command names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.commands[name]
	return ok
}

// Dispatch runs the requested command
func (r *Registry) Dispatch(ctx context.Context, req Request) (resp Response) {
	resp.ID = req.ID

	handler, ok := r.commands[req.Command]
	if !ok {
		return failure(resp, gitlyerrors.Newf(gitlyerrors.KindUnknownCommand, "unknown command %q", req.Command))
	}

	defer func() {
		if p := recover(); p != nil {
			resp = failure(Response{ID: req.ID}, gitlyerrors.Newf(gitlyerrors.KindStoreError, "command %s panicked: %v", req.Command, p))
		}
	}()

	payload, err := handler(ctx, req.Args)
	if err != nil {
		return failure(resp, err)
	}
	resp.OK = true
	resp.Payload = payload
	return resp
}

func failure(resp Response, err error) Response {
	resp.OK = false
	resp.Payload = nil
	resp.Error = &ErrorPayload{
		Kind:    string(gitlyerrors.KindOf(err)),
		Message: err.Error(),
	}
	return resp
}

// Typed adapts a handler taking decoded arguments. Missing or null arguments
// decode to the zero value; malformed JSON is an invalid_argument error.
func Typed[A any](name string, fn func(ctx context.Context, args A) (any, error)) Command {
	return Command{
		Name: name,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args A
			if len(bytes.TrimSpace(raw)) > 0 {
				if err := json.Unmarshal(raw, &args); err != nil {
					return nil, gitlyerrors.New(gitlyerrors.KindInvalidArgument, fmt.Sprintf("decode arguments for %s", name), err)
				}
			}
			return fn(ctx, args)
		},
	}
}
