package pipeline

import "context"

// Validator runs declarative rules for one request type, returning every
// violation found, not just the first.
type Validator func(req Request) []Violation

// ValidationRegistry maps a request's Name to its validator. Populated at
// boot; unregistered request types pass through unvalidated.
type ValidationRegistry struct {
	validators map[string]Validator
}

func NewValidationRegistry() *ValidationRegistry {
	return &ValidationRegistry{validators: make(map[string]Validator)}
}

// Register associates a validator with a request name. Registering twice
// for the same name replaces the previous validator.
func (v *ValidationRegistry) Register(name string, validator Validator) {
	v.validators[name] = validator
}

// RegisterDefaultValidators wires the declarative rules this package ships
// into registry. Callers that add their own request types register
// additional validators the same way.
func RegisterDefaultValidators(registry *ValidationRegistry) {
	registry.Register(CreateCustomerCommand{}.Name(), ValidateCreateCustomer)
}

// ValidationMiddleware short-circuits with a violations-only Result when any
// registered rule fails, before the handler ever runs.
func ValidationMiddleware(registry *ValidationRegistry) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, req Request) Result {
			if validate, ok := registry.validators[req.Name()]; ok {
				if violations := validate(req); len(violations) > 0 {
					return Result{Violations: violations}
				}
			}
			return next(ctx, req)
		}
	}
}
