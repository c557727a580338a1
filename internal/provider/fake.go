package provider

import "context"

// Fake is a canned Completer for tests. It records the last request and
// returns a fixed response or error.
type Fake struct {
	Content  string
	Err      error
	Calls    int
	LastReq  Request
	NameText string
}

func (f *Fake) Complete(ctx context.Context, req Request) (Response, error) {
	f.Calls++
	f.LastReq = req
	if f.Err != nil {
		return Response{}, f.Err
	}
	return Response{Content: f.Content}, nil
}

func (f *Fake) Name() string {
	if f.NameText != "" {
		return f.NameText
	}
	return "fake"
}
