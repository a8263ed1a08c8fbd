// Package api provides an HTTP client for the todos JSON API.
//
// # Overview
//
// The client is the data source for todoview. It fetches the complete todo
// list and, for the detail overlay, the user a todo belongs to. It never
// filters, caches, or mutates anything; the session package owns that.
//
//	client, err := api.NewClient("https://jsonplaceholder.typicode.com", api.Options{})
//	if err != nil {
//		return err
//	}
//	todos, err := client.FetchTodos(ctx)
//
// # API Endpoints
//
//   - GET {base}/todos: array of {id, userId, title, completed}
//   - GET {base}/users/{id}: a single user object
//
// The base URL may carry a path prefix ("https://host/api"); endpoints resolve
// beneath it. A bare "host:port" gets an http:// scheme.
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation and timeout control
//   - Set Accept: application/json and User-Agent: todoview/0.1
//   - Wait on a token-bucket limiter when Options.RequestsPerSecond > 0
//   - Validate the body against an embedded JSON schema before decoding
//
// # Error Handling
//
// Errors are wrapped with fmt.Errorf and describe the failing step:
//
//   - "execute request: dial tcp: connection refused"
//   - "api /todos returned status 500"
//   - "api /todos: invalid payload: ..." (errors.Is(err, ErrInvalidPayload))
//   - "decode response: unexpected end of JSON input"
//   - "rate limit: context deadline exceeded"
//
// # Thread Safety
//
// Client is safe for concurrent use. Overlapping fetches started by the UI
// share the underlying http.Client and limiter.
package api
