// Package protocol defines the minirpc message schema and the rules that
// tell its message shapes apart on the wire.
//
// Nothing on the wire names a message's type. A document is classified by
// trying each candidate shape in a fixed order under strict field closure:
// a shape matches only if every required member is present and no other
// member appears.
//
// # Requests
//
// A request payload is a Call or a Notification:
//
//	{"id":1,"method":"sum","params":[1,2,3]}   // Call
//	{"method":"log","params":{"level":"info"}} // Notification
//
// Call is tried first. Because a Notification's fields are a strict subset of
// a Call's, a document with an id is never a Notification and a document
// without one is never a Call.
//
// # Responses
//
// A response payload is a Failure or a Success:
//
//	{"error":{"code":-32601,"message":"Method not found"},"id":1} // Failure
//	{"id":1,"result":6}                                           // Success
//
// Failure is tried first. A Failure's id is optional and omitted from the
// wire when absent. A document carrying both error and result is rejected.
//
// # Batches
//
// Request and Response are either one payload or a JSON array of payloads.
// Batches keep their order and fail as a whole when any element fails:
//
//	req, err := protocol.ParseRequest(data)
//	if err != nil {
//	    failure := protocol.NewUncorrelatedFailure(protocol.AsError(err))
//	    ...
//	}
//	for _, call := range req.Calls() {
//	    ...
//	}
//
// # Error Codes
//
// The reserved codes are constants of type Code:
//
//	ParseError     = -32700
//	InvalidRequest = -32600
//	MethodNotFound = -32601
//	InvalidParams  = -32602
//	InternalError  = -32603
//
// Any other integer is a server-defined code, see NewServerError.
//
// # Encoding
//
// MarshalJSON writes strings verbatim apart from quotes, backslashes and
// control characters, so a decoded document re-encodes to the same bytes.
// Passing an envelope to json.Marshal re-escapes <, > and &; call its
// MarshalJSON method to keep the output verbatim.
//
// Decoding rejects an object that repeats a member name with
// ErrDuplicateField.
//
// # Typed Projection
//
// Params and results travel as opaque JSON. Call sites that know a method's
// shapes project them into Go types:
//
//	typed, err := protocol.ProjectCall[SumParams](call)
//	result, err := protocol.ProjectSuccess[int](success)
package protocol
