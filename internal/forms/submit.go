package forms

import "context"

// Submit runs the two-stage dialog gate. Stage one validates the form
// struct; on any violation the remote call is never made and the per-field
// messages are returned. Stage two performs the create-or-update request;
// its error is surfaced unchanged so the screen keeps the entered values.
func Submit[T any](ctx context.Context, v *Validator, form any, call func(context.Context) (T, error)) (T, map[string]string, error) {
	var zero T
	if fieldErrors := v.Check(form); len(fieldErrors) > 0 {
		return zero, fieldErrors, nil
	}
	record, err := call(ctx)
	if err != nil {
		return zero, nil, err
	}
	return record, nil, nil
}
