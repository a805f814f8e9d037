package testutils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
)

type RequestOptions struct {
	headers map[string]string
}

type RequestArgs struct {
	Router http.Handler
	Method string
	URL    string
	Body   io.Reader
}

// Response ответ роутера с уже прочитанным телом.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func MakeRequest(args RequestArgs, opts ...func(*RequestOptions)) (*Response, error) {
	options := RequestOptions{
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(&options)
	}

	request := httptest.NewRequest(args.Method, args.URL, args.Body)
	for k, v := range options.headers {
		request.Header.Set(k, v)
	}

	recorder := httptest.NewRecorder()
	args.Router.ServeHTTP(recorder, request)

	res := recorder.Result()
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %s", err.Error())
	}
	return &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       body,
	}, nil
}

func WithHeader(name, value string) func(*RequestOptions) {
	return func(fn *RequestOptions) {
		fn.headers[name] = value
	}
}

// WithBearer добавляет заголовок Authorization с jwt токеном.
func WithBearer(token string) func(*RequestOptions) {
	return WithHeader("Authorization", "Bearer "+token)
}
