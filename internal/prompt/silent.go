package prompt

import "context"

// Silent answers every request with its default.
type Silent struct{}

// Select returns the default, or the first option when there is none.
func (Silent) Select(_ context.Context, req SelectRequest) (string, error) {
	if req.Default != "" {
		return req.Default, nil
	}
	if len(req.Options) == 0 {
		return "", ErrNoInput
	}
	return req.Options[0].Value, nil
}

func (Silent) MultiSelect(_ context.Context, req MultiSelectRequest) ([]string, error) {
	return append([]string(nil), req.Default...), nil
}

func (Silent) Text(_ context.Context, req TextRequest) (string, error) {
	if req.Default == "" {
		return "", ErrNoInput
	}
	return req.Default, nil
}
